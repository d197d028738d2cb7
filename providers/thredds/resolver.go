// Package thredds berechnet Gesamtgrößen aus OPeNDAP-THREDDS-Katalogen,
// wenn der Upstream für eine Datei die Größe 0 meldet.
package thredds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

const catalogNamespace = "http://www.unidata.ucar.edu/namespaces/thredds/InvCatalog/v1.0"

// Obergrenze für den Katalog-Abstieg; zusammen mit dem Visited-Set
// schützt sie gegen zyklische oder entartete Kataloge.
const maxCatalogs = 1000

// Größen-Suffixe multiplizieren den dataSize-Wert dezimal.
var unitFactors = map[string]int64{
	"bytes":  1,
	"Kbytes": 1e3,
	"Mbytes": 1e6,
	"Gbytes": 1e9,
	"Tbytes": 1e12,
	"Pbytes": 1e15,
}

// Resolver läuft einen THREDDS-Katalogbaum iterativ ab und summiert alle
// dataSize-Einträge.
type Resolver struct {
	Logger *zap.Logger
}

// NewResolver erstellt einen neuen THREDDS-Resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{Logger: logger}
}

// Matches meldet, ob eine Download-URL auf einen THREDDS-Katalog zeigt.
func Matches(downloadURL string) bool {
	return strings.Contains(downloadURL, "/thredds/") && strings.HasSuffix(downloadURL, ".html")
}

// TotalSize ersetzt das .html-Suffix der Katalog-URL durch .xml und
// summiert alle dataSize-Einträge über den gesamten Katalog-Abstieg.
// Der Abstieg ist iterativ (Work-Queue) mit Visited-Set statt rekursiv.
func (r *Resolver) TotalSize(ctx context.Context, htmlURL string) (int64, error) {
	start := strings.TrimSuffix(htmlURL, ".html") + ".xml"
	queue := []string{start}
	visited := make(map[string]bool)

	var total int64
	for len(queue) > 0 {
		if len(visited) >= maxCatalogs {
			r.Logger.Warn("Katalog-Abstieg hat das Sicherheitslimit erreicht",
				zap.String("start", start), zap.Int("max_catalogs", maxCatalogs))
			break
		}

		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		size, refs, err := r.readCatalog(ctx, current)
		if err != nil {
			if current == start {
				return 0, err
			}
			r.Logger.Warn("Unterkatalog konnte nicht gelesen werden",
				zap.String("url", current), zap.Error(err))
			continue
		}
		total += size

		for _, ref := range refs {
			queue = append(queue, subCatalogURL(current, ref))
		}
	}
	return total, nil
}

// readCatalog holt einen einzelnen Katalog und liest ihn als Token-Strom:
// dataSize-Einträge werden summiert, catalogRef-Verweise eingesammelt.
func (r *Resolver) readCatalog(ctx context.Context, url string) (int64, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, nil, fmt.Errorf("katalog-abruf %s failed: status %d", url, resp.StatusCode)
	}

	var (
		total int64
		refs  []string
	)
	decoder := xml.NewDecoder(resp.Body)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, nil, fmt.Errorf("fehler beim Parsen des Katalogs %s: %w", url, err)
		}

		element, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if element.Name.Space != catalogNamespace && element.Name.Space != "" {
			continue
		}

		switch element.Name.Local {
		case "catalogRef":
			for _, attr := range element.Attr {
				if attr.Name.Local == "href" {
					refs = append(refs, attr.Value)
				}
			}
		case "dataSize":
			units := "bytes"
			for _, attr := range element.Attr {
				if attr.Name.Local == "units" {
					units = attr.Value
				}
			}
			var text string
			if err := decoder.DecodeElement(&text, &element); err != nil {
				return 0, nil, err
			}
			value, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
			if err != nil {
				r.Logger.Warn("dataSize-Wert ist keine Ganzzahl",
					zap.String("url", url), zap.String("value", text))
				continue
			}
			factor, ok := unitFactors[units]
			if !ok {
				r.Logger.Warn("Unbekanntes dataSize-Suffix",
					zap.String("url", url), zap.String("units", units))
				continue
			}
			total += value * factor
		}
	}
	return total, refs, nil
}

// subCatalogURL löst den xlink:href-Wert eines Verweises gegen die
// aktuelle Katalog-URL auf; relative und absolute Verweise kommen beide vor.
func subCatalogURL(current, href string) string {
	base, err := url.Parse(current)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
