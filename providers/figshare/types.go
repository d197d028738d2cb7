package figshare

// versionEntry ist ein Eintrag der öffentlichen Versionsliste eines Items.
type versionEntry struct {
	Version int64  `json:"version"`
	URL     string `json:"url"`
}

// articleRef ist der reduzierte Artikel-Verweis in einer Collection.
type articleRef struct {
	ID int64 `json:"id"`
}

// summary ist die minimale Form eines Listen-Eintrags; mehr als die ID
// braucht das Enrichment nicht.
type summary struct {
	ID int64 `json:"id"`
}
