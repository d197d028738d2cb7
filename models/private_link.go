package models

// PrivateLink repräsentiert einen geteilten Zugriffslink auf einen noch
// nicht veröffentlichten Datensatz.
type PrivateLink struct {
	InternalID int64 `json:"-"`

	FigshareID  string     `json:"id"`
	IsActive    bool       `json:"is_active"`
	ExpiresDate *Timestamp `json:"expires_date,omitempty"`
}
