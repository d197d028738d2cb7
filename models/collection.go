package models

// Collection repräsentiert eine kuratierte Sammlung von Datasets.
type Collection struct {
	InternalID int64 `json:"-"`

	FigshareID    int64   `json:"id"`
	Title         string  `json:"title"`
	DOI           *string `json:"doi,omitempty"`
	Handle        *string `json:"handle,omitempty"`
	Description   *string `json:"description,omitempty"`
	GroupID       *int64  `json:"group_id,omitempty"`
	InstitutionID *int64  `json:"institution_id,omitempty"`
	URL           *string `json:"url,omitempty"`
	Citation      *string `json:"citation,omitempty"`
	ArticlesCount *int64  `json:"articles_count,omitempty"`
	Public        *int64  `json:"public,omitempty"`

	// Verweis auf eine externe Ressource (z.B. begleitender Artikel)
	ResourceID      *string `json:"resource_id,omitempty"`
	ResourceDOI     *string `json:"resource_doi,omitempty"`
	ResourceTitle   *string `json:"resource_title,omitempty"`
	ResourceLink    *string `json:"resource_link,omitempty"`
	ResourceVersion *int64  `json:"resource_version,omitempty"`

	CreatedDate   *Timestamp `json:"created_date,omitempty"`
	ModifiedDate  *Timestamp `json:"modified_date,omitempty"`
	PublishedDate *Timestamp `json:"published_date,omitempty"`

	// Version ist im privaten Detail-View bewusst nil, analog zu Dataset.
	Version    *int64 `json:"version,omitempty"`
	IsLatest   bool   `json:"-"`
	IsEditable bool   `json:"-"`

	AccountID *int64 `json:"-"`

	Timeline     *Timeline     `json:"timeline,omitempty"`
	Authors      []Author      `json:"authors,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Categories   []Category    `json:"categories,omitempty"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`

	// Nur die IDs der enthaltenen Datasets; dereferenziert wird anderswo.
	ArticleIDs   []int64       `json:"-"`
	PrivateLinks []PrivateLink `json:"-"`
	Versions     []Collection  `json:"-"`
}
