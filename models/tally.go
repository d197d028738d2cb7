package models

// Tally zählt geschriebene und fehlgeschlagene Records pro Kategorie
// über einen Snapshot-Lauf.
type Tally struct {
	AccountsWritten    int `json:"accounts_written"`
	AccountsFailed     int `json:"accounts_failed"`
	DatasetsWritten    int `json:"datasets_written"`
	DatasetsFailed     int `json:"datasets_failed"`
	CollectionsWritten int `json:"collections_written"`
	CollectionsFailed  int `json:"collections_failed"`
	GroupsWritten      int `json:"groups_written"`
	GroupsFailed       int `json:"groups_failed"`
}
