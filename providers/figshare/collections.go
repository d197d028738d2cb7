package figshare

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rdbackup/models"
)

// GetCollectionsByAccount listet die Collection-IDs eines Accounts (impersoniert).
func (c *Client) GetCollectionsByAccount(ctx context.Context, accountID int64) ([]int64, error) {
	raw, err := c.GetAll(ctx, "/account/collections", ListOptions{Impersonate: accountID})
	if err != nil {
		return nil, err
	}
	return decodeIDs(c.Logger, raw), nil
}

// GetCollectionDetail dereferenziert eine Collection-Zusammenfassung in den
// vollen Record samt Autoren, enthaltenen Artikel-IDs, Private Links und
// allen nicht-aktuellen Versionen.
func (c *Client) GetCollectionDetail(ctx context.Context, collectionID, accountID int64) (*models.Collection, error) {
	log := c.Logger.With(zap.Int64("collection_id", collectionID), zap.Int64("account_id", accountID))
	log.Debug("Hole Collection-Details.")

	var collection models.Collection
	path := fmt.Sprintf("/account/collections/%d", collectionID)
	if err := c.getRecord(ctx, path, impersonate(accountID), &collection); err != nil {
		return nil, err
	}

	currentVersion := collection.Version
	collection.Version = nil
	collection.IsLatest = true
	collection.IsEditable = true
	collection.AccountID = &accountID

	collection.Authors = c.enrichAuthors(ctx, collection.Authors, accountID)
	collection.ArticleIDs = c.getCollectionArticleIDs(ctx, collectionID, accountID)

	links, err := c.getPrivateLinks(ctx, fmt.Sprintf("/account/collections/%d/private_links", collectionID), accountID)
	if err != nil {
		log.Warn("Private Links konnten nicht geladen werden", zap.Error(err))
	} else {
		collection.PrivateLinks = links
	}

	collection.Versions = c.getCollectionVersions(ctx, collectionID, currentVersion)
	return &collection, nil
}

// getCollectionArticleIDs sammelt nur die IDs der enthaltenen Artikel;
// dereferenziert werden die Datasets über die Account-Ingestion.
func (c *Client) getCollectionArticleIDs(ctx context.Context, collectionID, accountID int64) []int64 {
	raw, err := c.GetAll(ctx, fmt.Sprintf("/account/collections/%d/articles", collectionID),
		ListOptions{Impersonate: accountID})
	if err != nil {
		c.Logger.Warn("Artikel-Liste der Collection konnte nicht geladen werden",
			zap.Int64("collection_id", collectionID), zap.Error(err))
		return nil
	}

	ids := make([]int64, 0, len(raw))
	for _, record := range raw {
		var ref articleRef
		if err := json.Unmarshal(record, &ref); err != nil {
			continue
		}
		ids = append(ids, ref.ID)
	}
	return ids
}

// getCollectionVersions enumeriert und dereferenziert die öffentlichen
// Versionen einer Collection, analog zu den Dataset-Versionen.
func (c *Client) getCollectionVersions(ctx context.Context, collectionID int64, exclude *int64) []models.Collection {
	log := c.Logger.With(zap.Int64("collection_id", collectionID))

	var entries []versionEntry
	if err := c.getList(ctx, fmt.Sprintf("/collections/%d/versions", collectionID), nil, &entries); err != nil {
		log.Warn("Versionsliste konnte nicht geladen werden", zap.Error(err))
		return nil
	}

	var (
		versions []models.Collection
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

			var version models.Collection
			path := fmt.Sprintf("/collections/%d/versions/%d", collectionID, number)
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
