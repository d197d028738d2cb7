package storage_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rdbackup/models"
	"rdbackup/storage"
)

func newTestLedger(t *testing.T) *storage.Ledger {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ledger, err := storage.NewLedger(db)
	require.NoError(t, err)
	return ledger
}

func TestLedgerBeginAndFinish(t *testing.T) {
	ledger := newTestLedger(t)

	run, err := ledger.Begin("https://data.example.org/portal/self-test")
	require.NoError(t, err)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.FinishedAt)

	tally := &models.Tally{AccountsWritten: 3, DatasetsWritten: 12, DatasetsFailed: 1}
	require.NoError(t, ledger.Finish(run, "succeeded", "/tmp/snapshot.nt", "", 4200, tally))

	runs, err := ledger.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "succeeded", runs[0].Status)
	assert.Equal(t, 4200, runs[0].Triples)
	assert.NotNil(t, runs[0].FinishedAt)

	var stored models.Tally
	require.NoError(t, json.Unmarshal(runs[0].Tallies, &stored))
	assert.Equal(t, 12, stored.DatasetsWritten)
	assert.Equal(t, 1, stored.DatasetsFailed)
}

func TestLedgerRecentOrdersNewestFirst(t *testing.T) {
	ledger := newTestLedger(t)

	first, err := ledger.Begin("graph-a")
	require.NoError(t, err)
	require.NoError(t, ledger.Finish(first, "failed", "", "", 0, nil))

	_, err = ledger.Begin("graph-b")
	require.NoError(t, err)

	runs, err := ledger.Recent(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "graph-b", runs[0].GraphIRI)
}
