package models

// Dataset repräsentiert einen Datensatz (im Upstream-Jargon "Article"),
// entweder den aktuellen Stand aus dem privaten Detail-View oder eine
// einzelne öffentliche Version.
type Dataset struct {
	InternalID int64 `json:"-"`

	FigshareID    int64   `json:"id"`
	Title         string  `json:"title"`
	DOI           *string `json:"doi,omitempty"`
	Handle        *string `json:"handle,omitempty"`
	GroupID       *int64  `json:"group_id,omitempty"`
	URL           *string `json:"url,omitempty"`
	URLPublicHTML *string `json:"url_public_html,omitempty"`
	URLPublicAPI  *string `json:"url_public_api,omitempty"`

	URLPrivateHTML *string `json:"url_private_html,omitempty"`
	URLPrivateAPI  *string `json:"url_private_api,omitempty"`

	Description     *string `json:"description,omitempty"`
	DefinedType     *int64  `json:"defined_type,omitempty"`
	DefinedTypeName *string `json:"defined_type_name,omitempty"`
	Citation        *string `json:"citation,omitempty"`
	Status          *string `json:"status,omitempty"`
	Thumb           *string `json:"thumb,omitempty"`

	IsPublic           bool    `json:"is_public"`
	IsEmbargoed        bool    `json:"is_embargoed"`
	IsConfidential     bool    `json:"is_confidential"`
	IsMetadataRecord   bool    `json:"is_metadata_record"`
	ConfidentialReason *string `json:"confidential_reason,omitempty"`
	MetadataReason     *string `json:"metadata_reason,omitempty"`
	EmbargoDate        *string `json:"embargo_date,omitempty"`
	EmbargoType        *string `json:"embargo_type,omitempty"`
	EmbargoTitle       *string `json:"embargo_title,omitempty"`
	EmbargoReason      *string `json:"embargo_reason,omitempty"`

	Size          int64      `json:"size"`
	HasLinkedFile bool       `json:"has_linked_file"`
	CreatedDate   *Timestamp `json:"created_date,omitempty"`
	ModifiedDate  *Timestamp `json:"modified_date,omitempty"`
	PublishedDate *Timestamp `json:"published_date,omitempty"`

	// Version ist im privaten Detail-View bewusst nil; nur öffentliche
	// Versions-Records tragen eine Nummer.
	Version    *int64 `json:"version,omitempty"`
	IsLatest   bool   `json:"-"`
	IsEditable bool   `json:"-"`

	// AccountID wird beim Enrichment gesetzt (Impersonation-Kontext).
	AccountID *int64 `json:"-"`

	License      *License      `json:"license,omitempty"`
	Timeline     *Timeline     `json:"timeline,omitempty"`
	Authors      []Author      `json:"authors,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Categories   []Category    `json:"categories,omitempty"`
	References   []string      `json:"references,omitempty"`
	Files        []File        `json:"files,omitempty"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
	Funding      []Funding     `json:"funding_list,omitempty"`

	PrivateLinks []PrivateLink `json:"-"`
	Versions     []Dataset     `json:"-"`
}
