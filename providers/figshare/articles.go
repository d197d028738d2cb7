package figshare

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rdbackup/models"
)

// GetArticlesByAccount listet die Dataset-IDs eines Accounts (impersoniert).
func (c *Client) GetArticlesByAccount(ctx context.Context, accountID int64) ([]int64, error) {
	raw, err := c.GetAll(ctx, "/account/articles", ListOptions{Impersonate: accountID})
	if err != nil {
		return nil, err
	}
	return decodeIDs(c.Logger, raw), nil
}

// GetArticleDetail dereferenziert eine Dataset-Zusammenfassung in den
// vollständigen Record samt Autoren, Private Links und allen nicht-aktuellen
// Versionen. Der aktuelle Record bekommt is_latest/is_editable gesetzt und
// seine Versionsnummer bewusst auf nil zurückgesetzt (privater Detail-View).
func (c *Client) GetArticleDetail(ctx context.Context, articleID, accountID int64) (*models.Dataset, error) {
	log := c.Logger.With(zap.Int64("article_id", articleID), zap.Int64("account_id", accountID))
	log.Debug("Hole Dataset-Details.")

	var dataset models.Dataset
	path := fmt.Sprintf("/account/articles/%d", articleID)
	if err := c.getRecord(ctx, path, impersonate(accountID), &dataset); err != nil {
		return nil, err
	}

	currentVersion := dataset.Version
	dataset.Version = nil
	dataset.IsLatest = true
	dataset.IsEditable = true
	dataset.AccountID = &accountID

	dataset.Authors = c.enrichAuthors(ctx, dataset.Authors, accountID)

	links, err := c.getPrivateLinks(ctx, fmt.Sprintf("/account/articles/%d/private_links", articleID), accountID)
	if err != nil {
		log.Warn("Private Links konnten nicht geladen werden", zap.Error(err))
	} else {
		dataset.PrivateLinks = links
	}

	dataset.Versions = c.getArticleVersions(ctx, articleID, currentVersion)
	return &dataset, nil
}

// getArticleVersions enumeriert die öffentlichen Versionen eines Datasets
// und dereferenziert jede einzelne. exclude überspringt die Version des
// aktuellen Records, damit dieser nicht doppelt auftaucht.
func (c *Client) getArticleVersions(ctx context.Context, articleID int64, exclude *int64) []models.Dataset {
	log := c.Logger.With(zap.Int64("article_id", articleID))

	var entries []versionEntry
	if err := c.getList(ctx, fmt.Sprintf("/articles/%d/versions", articleID), nil, &entries); err != nil {
		log.Warn("Versionsliste konnte nicht geladen werden", zap.Error(err))
		return nil
	}

	var (
		versions []models.Dataset
		mu       sync.Mutex
		wg       sync.WaitGroup
	)
	semaphore := make(chan struct{}, c.Config.Workers())

	for _, entry := range entries {
		if exclude != nil && entry.Version == *exclude {
			continue
		}
		wg.Add(1)
		semaphore <- struct{}{}

		go func(number int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			var version models.Dataset
			path := fmt.Sprintf("/articles/%d/versions/%d", articleID, number)
			if err := c.getRecord(ctx, path, nil, &version); err != nil {
				log.Warn("Version konnte nicht dereferenziert werden",
					zap.Int64("version", number), zap.Error(err))
				return
			}
			version.IsLatest = false
			version.IsEditable = false

			mu.Lock()
			versions = append(versions, version)
			mu.Unlock()
		}(entry.Version)
	}

	wg.Wait()
	return versions
}

// enrichAuthors dereferenziert jede Autoren-Zusammenfassung parallel in den
// vollen Record. Schlägt ein Abruf fehl, bleibt die Zusammenfassung stehen.
func (c *Client) enrichAuthors(ctx context.Context, authors []models.Author, accountID int64) []models.Author {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.Config.Workers())

	enriched := make([]models.Author, len(authors))
	copy(enriched, authors)

	for i := range enriched {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(slot int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			var author models.Author
			path := fmt.Sprintf("/account/authors/%d", enriched[slot].FigshareID)
			if err := c.getRecord(ctx, path, impersonate(accountID), &author); err != nil {
				c.Logger.Warn("Autor konnte nicht dereferenziert werden",
					zap.Int64("author_id", enriched[slot].FigshareID), zap.Error(err))
				return
			}
			enriched[slot] = author
		}(i)
	}

	wg.Wait()
	return enriched
}

// getPrivateLinks holt die Private-Link-Records eines Items.
func (c *Client) getPrivateLinks(ctx context.Context, path string, accountID int64) ([]models.PrivateLink, error) {
	var links []models.PrivateLink
	if err := c.getList(ctx, path, impersonate(accountID), &links); err != nil {
		return nil, err
	}
	return links, nil
}

// decodeIDs reduziert rohe Listen-Einträge auf ihre IDs.
func decodeIDs(logger *zap.Logger, raw []json.RawMessage) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, record := range raw {
		var s summary
		if err := json.Unmarshal(record, &s); err != nil {
			logger.Warn("Listen-Eintrag konnte nicht dekodiert werden", zap.Error(err))
			continue
		}
		ids = append(ids, s.ID)
	}
	return ids
}
