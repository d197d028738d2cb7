package models

// Funding repräsentiert eine Förderung eines Datasets.
type Funding struct {
	InternalID int64 `json:"-"`

	FigshareID    int64   `json:"id"`
	Title         *string `json:"title,omitempty"`
	GrantCode     *string `json:"grant_code,omitempty"`
	FunderName    *string `json:"funder_name,omitempty"`
	URL           *string `json:"url,omitempty"`
	IsUserDefined bool    `json:"is_user_defined"`
}
