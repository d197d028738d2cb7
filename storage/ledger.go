package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rdbackup/models"
)

// Ledger ist die Lauf-Historie der Snapshot-Prozesse in der Datenbank.
type Ledger struct {
	DB *gorm.DB
}

// NewLedger migriert die Historien-Tabelle und gibt das Ledger zurück.
func NewLedger(db *gorm.DB) (*Ledger, error) {
	if err := db.AutoMigrate(&models.IngestRun{}); err != nil {
		return nil, fmt.Errorf("migration der Lauf-Historie fehlgeschlagen: %w", err)
	}
	return &Ledger{DB: db}, nil
}

// Begin legt einen laufenden Eintrag für einen frisch gestarteten Snapshot an.
func (l *Ledger) Begin(graphIRI string) (*models.IngestRun, error) {
	run := &models.IngestRun{
		StartedAt: time.Now().UTC(),
		Status:    "running",
		GraphIRI:  graphIRI,
	}
	if err := l.DB.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish schließt einen Eintrag ab und hängt die Zähler des Laufs an.
func (l *Ledger) Finish(run *models.IngestRun, status, graphFile, s3Link string, triples int, tally *models.Tally) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = status
	run.GraphFile = graphFile
	run.S3Link = s3Link
	run.Triples = triples
	if tally != nil {
		raw, err := json.Marshal(tally)
		if err != nil {
			return err
		}
		run.Tallies = datatypes.JSON(raw)
	}
	return l.DB.Save(run).Error
}

// Recent gibt die jüngsten Einträge der Historie zurück, neueste zuerst.
func (l *Ledger) Recent(limit int) ([]models.IngestRun, error) {
	var runs []models.IngestRun
	err := l.DB.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
