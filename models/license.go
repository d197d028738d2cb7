package models

// License repräsentiert die Lizenz eines Datasets.
type License struct {
	FigshareID int64   `json:"value"`
	Name       *string `json:"name,omitempty"`
	URL        *string `json:"url,omitempty"`
}
