package storage

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Upstream-Freitexte enthalten gelegentlich PDF-Ligaturen aus
// copy-paste-Beschreibungen; vor der Serialisierung werden sie ersetzt.
var ligatureReplacer = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
)

// normalizeText führt NFC-Normalisierung durch und ersetzt gängige Ligaturen,
// damit Literale über Läufe hinweg byte-stabil bleiben.
func normalizeText(s string) string {
	s = ligatureReplacer.Replace(s)
	normalized, _, err := transform.String(transform.Chain(norm.NFC), s)
	if err != nil {
		return s
	}
	return normalized
}
