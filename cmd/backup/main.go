// Einmal-Lauf für Cron-Umgebungen ohne den HTTP-Dienst: ein Snapshot,
// optional Upload nach S3, Exit-Code 0 bei Erfolg.
package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rdbackup/config"
	"rdbackup/services"
	"rdbackup/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	var ledger *storage.Ledger
	if cfg.LedgerEnabled() {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			logging.Fatal("Failed to connect to ledger database", zap.Error(err))
		}
		ledger, err = storage.NewLedger(db)
		if err != nil {
			logging.Fatal("Ledger migration failed", zap.Error(err))
		}
	}

	ctx := context.Background()
	ingest := services.NewIngestService(cfg, logging, ledger)
	result, err := ingest.Run(ctx)
	if err != nil {
		logging.Error("Snapshot fehlgeschlagen", zap.Error(err))
		fail(logging)
	}

	if cfg.S3Enabled() {
		if err := uploadSnapshot(ctx, cfg, logging, result.SnapshotPath); err != nil {
			logging.Error("S3-Upload fehlgeschlagen", zap.Error(err))
			fail(logging)
		}
	}
}

// fail leert die Log-Puffer, bevor os.Exit die Defers überspringt.
func fail(logging *zap.Logger) {
	_ = logging.Sync()
	os.Exit(1)
}

// uploadSnapshot komprimiert den Snapshot, lädt ihn ins Bucket hoch und
// rotiert alte Objekte heraus.
func uploadSnapshot(ctx context.Context, cfg *config.Config, logging *zap.Logger, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var compressed bytes.Buffer
	writer := gzip.NewWriter(&compressed)
	if _, err := writer.Write(raw); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	client, err := storage.NewS3Client(cfg)
	if err != nil {
		return err
	}

	key := filepath.Base(path) + ".gz"
	link, err := storage.UploadSnapshot(ctx, client, cfg, key, compressed.Bytes())
	if err != nil {
		return err
	}
	logging.Info("Snapshot hochgeladen",
		zap.String("link", link),
		zap.Int("raw_bytes", len(raw)),
		zap.Int("compressed_bytes", compressed.Len()))

	deleted, err := storage.RotateSnapshots(ctx, client, cfg, cfg.KeepSnapshots)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logging.Info("Alte Snapshots rotiert", zap.Int("deleted", deleted))
	}
	return nil
}
