// Package figshare enthält die Logik für die Interaktion mit dem
// Figshare-v2-kompatiblen Upstream-API.
package figshare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"rdbackup/config"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ErrNotFound signalisiert das Upstream-Idiom für "nicht gefunden":
// eine JSON-Liste an einer Stelle, an der ein Objekt erwartet wird.
var ErrNotFound = errors.New("record upstream nicht gefunden")

// Client kapselt die HTTP-Schicht gegen das Upstream-API: Header-Aufbau,
// JSON-Dekodierung und einheitliches Fehler-Logging.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Upstream-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// get führt ein GET gegen die konfigurierte Basis-URL aus und gibt den
// rohen Response-Body zurück. Jeder Nicht-200-Status wird samt Parametern
// und Body geloggt und als Fehler gemeldet.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.FigshareBaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.Config.FigshareToken)
	req.Header.Set("User-Agent", c.Config.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		c.Logger.Error("Upstream-Anfrage fehlgeschlagen",
			zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("Upstream hat Nicht-200-Status zurückgegeben",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("params", params.Encode()),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("GET %s failed: status %d", path, resp.StatusCode)
	}
	return body, nil
}

// getRecord dekodiert einen Detail-Endpunkt, von dem ein JSON-Objekt
// erwartet wird. Liefert der Upstream stattdessen eine Liste, ist das
// sein "nicht gefunden" und wird als ErrNotFound gemeldet.
func (c *Client) getRecord(ctx context.Context, path string, params url.Values, v interface{}) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("fehler beim Dekodieren von %s: %w", path, err)
	}
	return nil
}

// getList dekodiert einen Listen-Endpunkt.
func (c *Client) getList(ctx context.Context, path string, params url.Values, v interface{}) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("fehler beim Dekodieren von %s: %w", path, err)
	}
	return nil
}

// impersonate baut Query-Parameter für den privaten Endpunkt-Kontext.
func impersonate(accountID int64) url.Values {
	params := url.Values{}
	if accountID > 0 {
		params.Set("impersonate", fmt.Sprintf("%d", accountID))
	}
	return params
}
