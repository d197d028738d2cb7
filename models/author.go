package models

// Author repräsentiert eine Autorin oder einen Autor eines Datasets bzw. einer Collection.
type Author struct {
	InternalID int64 `json:"-"`

	FigshareID int64   `json:"id"`
	FullName   string  `json:"full_name"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	URLName    *string `json:"url_name,omitempty"`
	OrcidID    *string `json:"orcid_id,omitempty"`
	JobTitle   *string `json:"job_title,omitempty"`
	IsActive   int64   `json:"is_active"`
	IsPublic   int64   `json:"is_public"`
	GroupID    *int64  `json:"group_id,omitempty"`
}
