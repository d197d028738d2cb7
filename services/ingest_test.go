package services_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rdbackup/config"
	"rdbackup/services"
)

// fakeUpstream stellt die Endpunkte nach, die ein kompletter Snapshot-Lauf
// anfasst: einen Account mit einem Dataset (inklusive älterer Version und
// THREDDS-Datei), eine Collection und eine Gruppe. Ein zweiter Account ohne
// Upstream-ID prüft die Account-Atomarität.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	var baseURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "" && r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}

		switch r.URL.Path {
		case "/account/institution/accounts":
			fmt.Fprint(w, `[
				{"id": 101, "email": "alice@example.org", "first_name": "Alice", "active": 1},
				{"email": "ghost@example.org", "active": 0}
			]`)
		case "/account/articles":
			assert.Equal(t, "101", r.URL.Query().Get("impersonate"))
			fmt.Fprint(w, `[{"id": 11}, {"id": 12}]`)
		case "/account/articles/11":
			fmt.Fprintf(w, `{
				"id": 11, "title": "Wind measurements", "version": 2,
				"is_public": true, "size": 0,
				"authors": [{"id": 5, "full_name": "A. Author"}],
				"license": {"value": 1, "name": "CC0", "url": "https://creativecommons.org/publicdomain/zero/1.0/"},
				"timeline": {"posted": "2021-03-01T10:00:00Z"},
				"tags": ["wind"],
				"files": [{"id": 7, "name": "catalog", "size": 0,
					"download_url": "%s/thredds/catalog/data/catalog.html"}]
			}`, baseURL)
		case "/account/articles/12":
			// Upstream-"nicht gefunden": Liste statt Objekt.
			fmt.Fprint(w, `[]`)
		case "/account/authors/5":
			fmt.Fprint(w, `{"id": 5, "full_name": "Alice Author", "orcid_id": "0000-0001-0000-0000", "is_active": 1}`)
		case "/account/articles/11/private_links":
			fmt.Fprint(w, `[{"id": "a1b2c3", "is_active": true}]`)
		case "/articles/11/versions":
			fmt.Fprint(w, `[{"version": 1, "url": "v1"}, {"version": 2, "url": "v2"}]`)
		case "/articles/11/versions/1":
			fmt.Fprint(w, `{"id": 11, "title": "Wind measurements", "version": 1, "is_public": true}`)
		case "/account/collections":
			fmt.Fprint(w, `[{"id": 21}]`)
		case "/account/collections/21":
			fmt.Fprint(w, `{"id": 21, "title": "Wind collection", "version": 1}`)
		case "/account/collections/21/articles":
			fmt.Fprint(w, `[{"id": 11}]`)
		case "/account/collections/21/private_links":
			fmt.Fprint(w, `[]`)
		case "/collections/21/versions":
			fmt.Fprint(w, `[{"version": 1}]`)
		case "/account/institution/groups":
			fmt.Fprint(w, `[{"id": 31, "name": "Faculty of Things"}]`)
		case "/thredds/catalog/data/catalog.xml":
			fmt.Fprint(w, `<?xml version="1.0"?>
<catalog xmlns="http://www.unidata.ucar.edu/namespaces/thredds/InvCatalog/v1.0">
  <dataset name="top"><dataSize units="Mbytes">2</dataSize></dataset>
</catalog>`)
		default:
			t.Errorf("unerwarteter Abruf: %s %s", r.URL.Path, r.URL.RawQuery)
			http.NotFound(w, r)
		}
	}))
	baseURL = srv.URL
	return srv
}

func TestRunProducesCompleteSnapshot(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()

	outputDir := t.TempDir()
	cfg := &config.Config{
		FigshareToken:   "test-token",
		FigshareBaseURL: srv.URL,
		InstitutionID:   898,
		UserAgent:       "rdbackup-test",
		StateGraph:      "https://data.example.org/portal/self-test",
		OutputDirectory: outputDir,
		Parallelism:     2,
	}

	service := services.NewIngestService(cfg, zap.NewNop(), nil)
	result, err := service.Run(context.Background())
	require.NoError(t, err)

	// Der Account ohne Upstream-ID fällt komplett raus, seine Kinder
	// werden gar nicht erst abgefragt.
	assert.Equal(t, 1, result.Tally.AccountsWritten)
	assert.Equal(t, 1, result.Tally.AccountsFailed)

	// Aktueller Stand plus öffentliche Version 1; Version 2 ist der
	// aktuelle Record selbst und taucht nicht doppelt auf. Dataset 12
	// meldet das Listen-statt-Objekt-Idiom und wird gezählt übersprungen.
	assert.Equal(t, 2, result.Tally.DatasetsWritten)
	assert.Equal(t, 1, result.Tally.DatasetsFailed)
	assert.Equal(t, 1, result.Tally.CollectionsWritten)
	assert.Equal(t, 1, result.Tally.GroupsWritten)

	require.NotEmpty(t, result.SnapshotPath)
	assert.Equal(t, outputDir, filepath.Dir(result.SnapshotPath))

	content, err := os.ReadFile(result.SnapshotPath)
	require.NoError(t, err)
	serialized := string(content)

	assert.Contains(t, serialized, "Wind measurements")
	assert.Contains(t, serialized, "Wind collection")
	assert.Contains(t, serialized, "Faculty of Things")
	assert.Contains(t, serialized, "Alice Author")

	// Nur der Versions-Record trägt eine Versionsnummer; aktuelle Records
	// tragen stattdessen is_latest/is_editable.
	assert.Equal(t, 1, strings.Count(serialized, "/table/version> \"1\""))
	assert.NotContains(t, serialized, "/table/version> \"2\"")
	assert.Equal(t, 2, strings.Count(serialized, "/table/is_latest> \"true\""))
	assert.Equal(t, 1, strings.Count(serialized, "/table/is_latest> \"false\""))

	// Die THREDDS-Datei mit gemeldeter Größe 0 bekommt die Katalog-Summe.
	assert.Contains(t, serialized, "/table/size> \"2000000\"")

	lines := strings.Split(strings.TrimSpace(serialized), "\n")
	assert.Equal(t, result.Triples, len(lines))
}

func TestRunRequestsStatisticsWithUpstreamItemTypes(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()

	// Der Statistik-Host kennt die Typ-Segmente "article" und "collection";
	// ein anderes Segment wäre ein toter Pfad und alle Zähler blieben leer.
	var mu sync.Mutex
	var statsPaths []string
	statsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		statsPaths = append(statsPaths, r.URL.Path)
		mu.Unlock()
		fmt.Fprint(w, `{}`)
	}))
	defer statsSrv.Close()

	cfg := &config.Config{
		FigshareToken:   "test-token",
		FigshareBaseURL: srv.URL,
		InstitutionID:   898,
		UserAgent:       "rdbackup-test",
		StatsAuth:       "user:secret",
		StatsBaseURL:    statsSrv.URL,
		StateGraph:      "https://data.example.org/portal/self-test",
		OutputDirectory: t.TempDir(),
		Parallelism:     2,
	}

	service := services.NewIngestService(cfg, zap.NewNop(), nil)
	_, err := service.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, statsPaths)
	var articleSeen, collectionSeen bool
	for _, path := range statsPaths {
		assert.NotContains(t, path, "/dataset/")
		if strings.Contains(path, "/article/11") {
			articleSeen = true
		}
		if strings.Contains(path, "/collection/21") {
			collectionSeen = true
		}
	}
	assert.True(t, articleSeen, "kein Statistik-Abruf mit article-Segment: %v", statsPaths)
	assert.True(t, collectionSeen, "kein Statistik-Abruf mit collection-Segment: %v", statsPaths)
}

func TestRunWithUnreachableUpstreamWritesEmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := &config.Config{
		FigshareToken:   "test-token",
		FigshareBaseURL: srv.URL,
		UserAgent:       "rdbackup-test",
		StateGraph:      "https://data.example.org/portal/self-test",
		OutputDirectory: t.TempDir(),
		Parallelism:     1,
	}

	// Fehlgeschlagene Seiten zählen als leere Slots: der Sweep liefert
	// keine Accounts, der Lauf endet trotzdem mit einem (leeren) Snapshot.
	service := services.NewIngestService(cfg, zap.NewNop(), nil)
	result, err := service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Tally.AccountsWritten)
	assert.Equal(t, 0, result.Triples)
	assert.FileExists(t, result.SnapshotPath)
}

func TestRunFailsWhenOutputDirectoryIsUnwritable(t *testing.T) {
	srv := fakeUpstream(t)
	defer srv.Close()

	// Eine Datei an der Stelle des Ausgabeverzeichnisses lässt MkdirAll
	// scheitern; das ist ein harter Fehler, kein Zähler.
	blocker := filepath.Join(t.TempDir(), "not-a-directory")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := &config.Config{
		FigshareToken:   "test-token",
		FigshareBaseURL: srv.URL,
		InstitutionID:   898,
		UserAgent:       "rdbackup-test",
		StateGraph:      "https://data.example.org/portal/self-test",
		OutputDirectory: blocker,
		Parallelism:     2,
	}

	service := services.NewIngestService(cfg, zap.NewNop(), nil)
	_, err := service.Run(context.Background())
	require.Error(t, err)
}
