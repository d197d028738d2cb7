package models

// DayCount ist ein einzelner Tageswert aus dem Statistik-Breakdown.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// StatisticsTotals sind die Gesamtzähler eines Items.
type StatisticsTotals struct {
	Views     int64 `json:"views"`
	Downloads int64 `json:"downloads"`
	Shares    int64 `json:"shares"`
}

// ItemStatistics bündelt Breakdown und Gesamtzähler eines Datasets oder
// einer Collection. Fehlende Authentifizierung oder ein Fehler bei einem
// Teil-Abruf lässt alle vier Felder nil.
type ItemStatistics struct {
	ItemID   int64  `json:"item_id"`
	ItemType string `json:"item_type"`

	Views     []DayCount        `json:"views,omitempty"`
	Downloads []DayCount        `json:"downloads,omitempty"`
	Shares    []DayCount        `json:"shares,omitempty"`
	Totals    *StatisticsTotals `json:"totals,omitempty"`
}

// Empty meldet, ob keinerlei Zähler vorliegen.
func (s *ItemStatistics) Empty() bool {
	return s == nil || (s.Views == nil && s.Downloads == nil && s.Shares == nil && s.Totals == nil)
}
