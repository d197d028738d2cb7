package models

import (
	"time"

	"gorm.io/datatypes"
)

// IngestRun ist ein Eintrag in der Lauf-Historie eines Snapshot-Prozesses.
type IngestRun struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status" gorm:"index"` // running, succeeded, failed

	GraphIRI  string `json:"graph_iri"`
	GraphFile string `json:"graph_file,omitempty"`
	S3Link    string `json:"s3_link,omitempty"`
	Triples   int    `json:"triples"`

	Tallies datatypes.JSON `json:"tallies,omitempty" gorm:"type:jsonb"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (IngestRun) TableName() string {
	return "ingest_runs"
}
