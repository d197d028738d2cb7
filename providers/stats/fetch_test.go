package stats_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rdbackup/config"
	"rdbackup/models"
	"rdbackup/providers/stats"
)

func TestCollectWithoutCredentialsIsEmpty(t *testing.T) {
	fetcher := stats.NewFetcher(&config.Config{StatsAuth: ""}, zap.NewNop())
	block := fetcher.Collect(context.Background(), 11, "article", "", "")

	require.NotNil(t, block)
	assert.True(t, block.Empty())
	assert.Equal(t, int64(11), block.ItemID)
	assert.Equal(t, "article", block.ItemType)
}

func TestCollectFetchesBreakdownAndTotals(t *testing.T) {
	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:secret"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))

		// Der Statistik-Host kennt nur die Typ-Segmente "article" und
		// "collection"; alles andere ist ein toter Pfad.
		switch {
		case strings.HasPrefix(r.URL.Path, "/4tu/breakdown/day/views/article/11/"):
			fmt.Fprint(w, `{"2021-01-02": 3, "2021-01-01": 5}`)
		case strings.HasPrefix(r.URL.Path, "/4tu/breakdown/day/downloads/article/11/"):
			fmt.Fprint(w, `{"2021-01-01": 2}`)
		case strings.HasPrefix(r.URL.Path, "/4tu/breakdown/day/shares/article/11/"):
			fmt.Fprint(w, `{}`)
		case r.URL.Path == "/total/article/11":
			fmt.Fprint(w, `{"views": 8, "downloads": 2, "shares": 1}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := stats.NewFetcher(&config.Config{
		StatsAuth:    "user:secret",
		StatsBaseURL: srv.URL,
		UserAgent:    "rdbackup-test",
	}, zap.NewNop())

	block := fetcher.Collect(context.Background(), 11, "article", "2020-07-01", "2021-02-01")
	require.NotNil(t, block)
	assert.False(t, block.Empty())

	// Tageswerte kommen als Map; das Ergebnis ist nach Datum sortiert.
	require.Len(t, block.Views, 2)
	assert.Equal(t, models.DayCount{Date: "2021-01-01", Count: 5}, block.Views[0])
	assert.Equal(t, models.DayCount{Date: "2021-01-02", Count: 3}, block.Views[1])

	require.NotNil(t, block.Totals)
	assert.Equal(t, int64(8), block.Totals.Views)
	assert.Equal(t, int64(1), block.Totals.Shares)
}

func TestCollectPartialFailureLeavesBlockEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/downloads/") {
			http.Error(w, "upstream broken", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"2021-01-01": 5}`)
	}))
	defer srv.Close()

	fetcher := stats.NewFetcher(&config.Config{
		StatsAuth:    "user:secret",
		StatsBaseURL: srv.URL,
	}, zap.NewNop())

	// Ein fehlgeschlagener Teil-Abruf lässt den ganzen Block leer,
	// halbe Statistiken landen nicht im Snapshot.
	block := fetcher.Collect(context.Background(), 11, "article", "", "")
	require.NotNil(t, block)
	assert.True(t, block.Empty())
}
