// Package services orchestriert die Ingestion: Accounts, Datasets,
// Collections und Gruppen werden eingesammelt, angereichert und als
// RDF-Snapshot serialisiert.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"rdbackup/config"
	"rdbackup/models"
	"rdbackup/providers/figshare"
	"rdbackup/providers/stats"
	"rdbackup/providers/thredds"
	"rdbackup/storage"
)

// RunResult fasst das Ergebnis eines Snapshot-Laufs zusammen.
type RunResult struct {
	Tally        models.Tally
	SnapshotPath string
	Triples      int
}

// IngestService treibt einen kompletten Snapshot-Lauf.
type IngestService struct {
	Config  *config.Config
	Logger  *zap.Logger
	Client  *figshare.Client
	Stats   *stats.Fetcher
	Thredds *thredds.Resolver
	IDs     *IDGenerator

	// Ledger ist optional; ohne Datenbank bleibt es nil.
	Ledger *storage.Ledger
}

// NewIngestService verdrahtet die Provider zu einem Snapshot-Dienst.
func NewIngestService(cfg *config.Config, logger *zap.Logger, ledger *storage.Ledger) *IngestService {
	return &IngestService{
		Config:  cfg,
		Logger:  logger,
		Client:  figshare.NewClient(cfg, logger),
		Stats:   stats.NewFetcher(cfg, logger),
		Thredds: thredds.NewResolver(logger),
		IDs:     NewIDGenerator(cfg.IDOffset),
		Ledger:  ledger,
	}
}

// preparedDataset bündelt einen fertig angereicherten Datensatz mit
// seiner Statistik; die Anreicherung läuft parallel, das Schreiben in
// den Graphen seriell.
type preparedDataset struct {
	dataset    *models.Dataset
	statistics *models.ItemStatistics
}

type preparedCollection struct {
	collection *models.Collection
	statistics *models.ItemStatistics
}

// Run führt einen kompletten Snapshot-Lauf aus: Accounts einsammeln, pro
// Account Datasets und Collections anreichern, Gruppen anhängen und den
// Graphen als N-Triples-Datei wegschreiben. Ein gescheiterter Account
// lässt seine Kinder aus (kein halber Account im Snapshot); gescheiterte
// Einzelrecords werden gezählt und übersprungen.
func (s *IngestService) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()
	graph := storage.NewGraph(s.Config.StateGraph, s.IDs, s.Logger)
	result := &RunResult{}
	tally := &result.Tally

	var run *models.IngestRun
	if s.Ledger != nil {
		var err error
		run, err = s.Ledger.Begin(s.Config.StateGraph)
		if err != nil {
			s.Logger.Warn("Lauf-Historie konnte nicht geschrieben werden", zap.Error(err))
			run = nil
		}
	}

	accounts, err := s.Client.GetAccounts(ctx)
	if err != nil {
		s.finishLedger(run, "failed", "", 0, tally)
		return result, fmt.Errorf("accounts konnten nicht geladen werden: %w", err)
	}
	s.Logger.Info("Accounts geladen", zap.Int("count", len(accounts)))

	for index := range accounts {
		account := &accounts[index]
		if err := graph.AddAccount(account); err != nil {
			s.Logger.Warn("Account übersprungen",
				zap.Int64("account_id", account.FigshareID), zap.Error(err))
			tally.AccountsFailed++
			continue
		}
		tally.AccountsWritten++

		s.ingestDatasets(ctx, graph, account, tally)
		s.ingestCollections(ctx, graph, account, tally)
	}

	groups, err := s.Client.GetGroups(ctx)
	if err != nil {
		s.Logger.Warn("Gruppen konnten nicht geladen werden", zap.Error(err))
	}
	for index := range groups {
		if err := graph.AddGroup(&groups[index]); err != nil {
			tally.GroupsFailed++
			continue
		}
		tally.GroupsWritten++
	}

	if err := os.MkdirAll(s.Config.OutputDirectory, 0o755); err != nil {
		s.finishLedger(run, "failed", "", graph.Len(), tally)
		return result, fmt.Errorf("ausgabeverzeichnis konnte nicht angelegt werden: %w", err)
	}
	filename := fmt.Sprintf("snapshot-%s.nt", started.UTC().Format("20060102-150405"))
	path := filepath.Join(s.Config.OutputDirectory, filename)
	if err := graph.WriteFile(path); err != nil {
		s.finishLedger(run, "failed", path, graph.Len(), tally)
		return result, err
	}
	result.SnapshotPath = path
	result.Triples = graph.Len()

	s.finishLedger(run, "succeeded", path, graph.Len(), tally)
	s.Logger.Info("Snapshot abgeschlossen",
		zap.String("file", path),
		zap.Int("triples", graph.Len()),
		zap.Duration("duration", time.Since(started)),
		zap.Int("accounts_written", tally.AccountsWritten),
		zap.Int("accounts_failed", tally.AccountsFailed),
		zap.Int("datasets_written", tally.DatasetsWritten),
		zap.Int("datasets_failed", tally.DatasetsFailed),
		zap.Int("collections_written", tally.CollectionsWritten),
		zap.Int("collections_failed", tally.CollectionsFailed),
		zap.Int("groups_written", tally.GroupsWritten),
		zap.Int("groups_failed", tally.GroupsFailed))
	return result, nil
}

func (s *IngestService) finishLedger(run *models.IngestRun, status, path string, triples int, tally *models.Tally) {
	if s.Ledger == nil || run == nil {
		return
	}
	if err := s.Ledger.Finish(run, status, path, "", triples, tally); err != nil {
		s.Logger.Warn("Lauf-Historie konnte nicht abgeschlossen werden", zap.Error(err))
	}
}

// ingestDatasets reichert alle Datasets eines Accounts parallel an und
// schreibt sie anschließend seriell in den Graphen.
func (s *IngestService) ingestDatasets(ctx context.Context, graph *storage.Graph, account *models.Account, tally *models.Tally) {
	ids, err := s.Client.GetArticlesByAccount(ctx, account.FigshareID)
	if err != nil {
		s.Logger.Warn("Dataset-Liste konnte nicht geladen werden",
			zap.Int64("account_id", account.FigshareID), zap.Error(err))
		return
	}

	prepared := make([]*preparedDataset, len(ids))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.Config.Workers())
	for index, articleID := range ids {
		wg.Add(1)
		go func(slot int, articleID int64) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			dataset, err := s.Client.GetArticleDetail(ctx, articleID, account.FigshareID)
			if err != nil {
				s.Logger.Warn("Dataset-Detail konnte nicht geladen werden",
					zap.Int64("article_id", articleID),
					zap.Int64("account_id", account.FigshareID), zap.Error(err))
				return
			}
			s.resolveFileSizes(ctx, dataset)
			prepared[slot] = &preparedDataset{
				dataset:    dataset,
				statistics: s.Stats.Collect(ctx, dataset.FigshareID, "article", "", ""),
			}
		}(index, articleID)
	}
	wg.Wait()

	for _, item := range prepared {
		if item == nil {
			tally.DatasetsFailed++
			continue
		}
		if err := graph.AddDataset(item.dataset, account.InternalID); err != nil {
			s.Logger.Warn("Dataset konnte nicht geschrieben werden",
				zap.Int64("article_id", item.dataset.FigshareID), zap.Error(err))
			tally.DatasetsFailed++
			continue
		}
		tally.DatasetsWritten++
		if !item.statistics.Empty() {
			graph.AddStatistics(item.statistics)
		}

		for index := range item.dataset.Versions {
			version := &item.dataset.Versions[index]
			if err := graph.AddDataset(version, account.InternalID); err != nil {
				tally.DatasetsFailed++
				continue
			}
			tally.DatasetsWritten++
		}
	}
}

// ingestCollections ist das Collection-Gegenstück zu ingestDatasets.
func (s *IngestService) ingestCollections(ctx context.Context, graph *storage.Graph, account *models.Account, tally *models.Tally) {
	ids, err := s.Client.GetCollectionsByAccount(ctx, account.FigshareID)
	if err != nil {
		s.Logger.Warn("Collection-Liste konnte nicht geladen werden",
			zap.Int64("account_id", account.FigshareID), zap.Error(err))
		return
	}

	prepared := make([]*preparedCollection, len(ids))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.Config.Workers())
	for index, collectionID := range ids {
		wg.Add(1)
		go func(slot int, collectionID int64) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			collection, err := s.Client.GetCollectionDetail(ctx, collectionID, account.FigshareID)
			if err != nil {
				s.Logger.Warn("Collection-Detail konnte nicht geladen werden",
					zap.Int64("collection_id", collectionID),
					zap.Int64("account_id", account.FigshareID), zap.Error(err))
				return
			}
			prepared[slot] = &preparedCollection{
				collection: collection,
				statistics: s.Stats.Collect(ctx, collection.FigshareID, "collection", "", ""),
			}
		}(index, collectionID)
	}
	wg.Wait()

	for _, item := range prepared {
		if item == nil {
			tally.CollectionsFailed++
			continue
		}
		if err := graph.AddCollection(item.collection, account.InternalID); err != nil {
			s.Logger.Warn("Collection konnte nicht geschrieben werden",
				zap.Int64("collection_id", item.collection.FigshareID), zap.Error(err))
			tally.CollectionsFailed++
			continue
		}
		tally.CollectionsWritten++
		if !item.statistics.Empty() {
			graph.AddStatistics(item.statistics)
		}

		for index := range item.collection.Versions {
			version := &item.collection.Versions[index]
			if err := graph.AddCollection(version, account.InternalID); err != nil {
				tally.CollectionsFailed++
				continue
			}
			tally.CollectionsWritten++
		}
	}
}

// resolveFileSizes ersetzt die Größe 0 von THREDDS-Katalog-Dateien durch
// die aufsummierte Byte-Größe aus dem Katalog-Abstieg.
func (s *IngestService) resolveFileSizes(ctx context.Context, dataset *models.Dataset) {
	for index := range dataset.Files {
		file := &dataset.Files[index]
		if file.Size != 0 || file.DownloadURL == nil || !thredds.Matches(*file.DownloadURL) {
			continue
		}
		size, err := s.Thredds.TotalSize(ctx, *file.DownloadURL)
		if err != nil {
			s.Logger.Warn("THREDDS-Katalog konnte nicht vermessen werden",
				zap.String("url", *file.DownloadURL), zap.Error(err))
			continue
		}
		file.Size = size
	}
}
