// Package stats enthält die Logik für den separaten Statistik-Host
// (Views/Downloads/Shares pro Tag plus Gesamtzähler).
package stats

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"rdbackup/config"
	"rdbackup/models"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Go-Live des Repositories; früher gibt es keine Zähler.
const defaultStartDate = "2020-07-01"

// Fetcher kapselt die Abrufe gegen den Statistik-Host.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Statistik-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Collect holt Breakdown und Gesamtzähler für ein Item. Fehlende
// Authentifizierung oder ein Fehler bei irgendeinem Teil-Abruf liefert
// einen Block, in dem alle vier Felder nil sind (nicht-fatal).
func (f *Fetcher) Collect(ctx context.Context, itemID int64, itemType, startDate, endDate string) *models.ItemStatistics {
	block := &models.ItemStatistics{ItemID: itemID, ItemType: itemType}
	if f.Config.StatsAuth == "" {
		f.Logger.Debug("Keine Statistik-Credentials konfiguriert, Zähler bleiben leer.",
			zap.Int64("item_id", itemID), zap.String("item_type", itemType))
		return block
	}

	if startDate == "" {
		startDate = defaultStartDate
	}
	if endDate == "" {
		endDate = time.Now().UTC().Format("2006-01-02")
	}

	views, err := f.breakdown(ctx, "views", itemType, itemID, startDate, endDate)
	if err != nil {
		f.Logger.Warn("Statistik-Abruf fehlgeschlagen", zap.Int64("item_id", itemID), zap.Error(err))
		return block
	}
	downloads, err := f.breakdown(ctx, "downloads", itemType, itemID, startDate, endDate)
	if err != nil {
		f.Logger.Warn("Statistik-Abruf fehlgeschlagen", zap.Int64("item_id", itemID), zap.Error(err))
		return block
	}
	shares, err := f.breakdown(ctx, "shares", itemType, itemID, startDate, endDate)
	if err != nil {
		f.Logger.Warn("Statistik-Abruf fehlgeschlagen", zap.Int64("item_id", itemID), zap.Error(err))
		return block
	}
	totals, err := f.totals(ctx, itemType, itemID)
	if err != nil {
		f.Logger.Warn("Gesamtzähler konnten nicht geladen werden", zap.Int64("item_id", itemID), zap.Error(err))
		return block
	}

	block.Views = views
	block.Downloads = downloads
	block.Shares = shares
	block.Totals = totals
	return block
}

// breakdown holt die Tageswerte einer Metrik und sortiert sie nach Datum.
func (f *Fetcher) breakdown(ctx context.Context, metric, itemType string, itemID int64, startDate, endDate string) ([]models.DayCount, error) {
	url := fmt.Sprintf("%s/4tu/breakdown/day/%s/%s/%d/%s/%s",
		f.Config.StatsBaseURL, metric, itemType, itemID, startDate, endDate)

	var perDay map[string]int64
	if err := f.getJSON(ctx, url, &perDay); err != nil {
		return nil, err
	}

	days := make([]models.DayCount, 0, len(perDay))
	for date, count := range perDay {
		days = append(days, models.DayCount{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// totals holt die Gesamtzähler eines Items.
func (f *Fetcher) totals(ctx context.Context, itemType string, itemID int64) (*models.StatisticsTotals, error) {
	url := fmt.Sprintf("%s/total/%s/%d", f.Config.StatsBaseURL, itemType, itemID)
	var totals models.StatisticsTotals
	if err := f.getJSON(ctx, url, &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}

func (f *Fetcher) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	credential := base64.StdEncoding.EncodeToString([]byte(f.Config.StatsAuth))
	req.Header.Set("Authorization", "Basic "+credential)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.Config.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("statistik-host meldet status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
