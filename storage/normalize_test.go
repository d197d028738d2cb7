package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Offshore wind", normalizeText("Oﬀshore wind"))
	assert.Equal(t, "file first", normalizeText("ﬁle ﬁrst"))

	// NFC: kombinierendes e + ´ wird zum vorkomponierten é.
	assert.Equal(t, "Café", normalizeText("Café"))
	assert.Equal(t, "unverändert", normalizeText("unverändert"))
}
