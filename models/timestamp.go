package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Upstream-Zeitstempel kommen mal mit, mal ohne Zone-Suffix.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp normalisiert Upstream-Zeitstempel auf einen expliziten UTC-Instant.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parst die bekannten Upstream-Layouts; zonenlose Werte gelten als UTC.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			ts.Time = t.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON serialisiert als RFC3339 in UTC.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}
