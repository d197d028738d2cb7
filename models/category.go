package models

// Category repräsentiert eine Fachkategorie aus der Upstream-Taxonomie.
type Category struct {
	FigshareID int64  `json:"id"`
	Title      string `json:"title"`
	ParentID   *int64 `json:"parent_id,omitempty"`
	SourceID   *int64 `json:"source_id,omitempty"`
	TaxonomyID *int64 `json:"taxonomy_id,omitempty"`
}
