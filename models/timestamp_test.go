package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdbackup/models"
)

func TestTimestampAcceptsUpstreamLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2021-03-01T10:00:00Z"`:      time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC),
		`"2021-03-01T10:00:00+02:00"`: time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC),
		`"2021-03-01T10:00:00"`:       time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC),
		`"2021-03-01"`:                time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, expected := range cases {
		var ts models.Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, ts.Equal(expected), "%s ergab %s", raw, ts.Time)
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts models.Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"gestern"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestCustomValueAcceptsStringAndList(t *testing.T) {
	var single models.CustomField
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Organization","value":"4TU"}`), &single))
	assert.Equal(t, models.CustomValue{"4TU"}, single.Value)

	var list models.CustomField
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Keywords","value":["a","b"]}`), &list))
	assert.Equal(t, models.CustomValue{"a", "b"}, list.Value)
}
