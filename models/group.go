package models

// Group repräsentiert eine institutionelle Gruppe (Fakultät, Abteilung).
type Group struct {
	FigshareID          int64   `json:"id"`
	ParentID            *int64  `json:"parent_id,omitempty"`
	Name                string  `json:"name"`
	ResourceID          *string `json:"resource_id,omitempty"`
	AssociationCriteria *string `json:"association_criteria,omitempty"`
}
