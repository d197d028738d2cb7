package services

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Entitätstypen, für die interne IDs vergeben werden.
const (
	KindAccount     = "account"
	KindArticle     = "article"
	KindCollection  = "collection"
	KindAuthor      = "author"
	KindFile        = "file"
	KindTimeline    = "timeline"
	KindCustomField = "custom_field"
	KindFunding     = "funding"
	KindPrivateLink = "private_link"
	KindStatistics  = "statistics"
)

// allKinds listet die Typen, deren Startwert vor der Ingestion gesetzt wird.
var allKinds = []string{
	KindAccount, KindArticle, KindCollection, KindAuthor, KindFile,
	KindTimeline, KindCustomField, KindFunding, KindPrivateLink, KindStatistics,
}

// IDGenerator vergibt prozessweite, streng monoton steigende IDs pro
// Entitätstyp. Die IDs emulieren im RDF-Graphen relationale Fremdschlüssel;
// Inkremente sind atomar, lückenlos und über alle Worker total geordnet.
type IDGenerator struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
}

// NewIDGenerator erstellt einen Generator mit dem gegebenen Startwert
// für alle bekannten Entitätstypen.
func NewIDGenerator(offset int64) *IDGenerator {
	g := &IDGenerator{counters: make(map[string]*atomic.Int64)}
	for _, kind := range allKinds {
		g.Set(kind, offset)
	}
	return g
}

// Set setzt den Zähler eines Typs; muss vor Beginn der Ingestion passieren.
func (g *IDGenerator) Set(kind string, n int64) {
	g.counter(kind).Store(n)
}

// Next inkrementiert den Zähler eines Typs und gibt den neuen Wert zurück.
func (g *IDGenerator) Next(kind string) int64 {
	return g.counter(kind).Add(1)
}

// Current gibt den aktuellen Zählerstand eines Typs zurück.
func (g *IDGenerator) Current(kind string) int64 {
	return g.counter(kind).Load()
}

// Kinds listet alle bekannten Typen in stabiler Reihenfolge.
func (g *IDGenerator) Kinds() []string {
	g.mu.RLock()
	kinds := make([]string, 0, len(g.counters))
	for kind := range g.counters {
		kinds = append(kinds, kind)
	}
	g.mu.RUnlock()
	sort.Strings(kinds)
	return kinds
}

func (g *IDGenerator) counter(kind string) *atomic.Int64 {
	g.mu.RLock()
	c, ok := g.counters[kind]
	g.mu.RUnlock()
	if ok {
		return c
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok = g.counters[kind]; ok {
		return c
	}
	c = &atomic.Int64{}
	g.counters[kind] = c
	return c
}
