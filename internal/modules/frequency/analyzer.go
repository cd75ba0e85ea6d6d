// Package frequency derives per-number hot/cold statistics from the draw history.
package frequency

import (
	"sync"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/rs/zerolog"
)

// Config holds the recency windows
type Config struct {
	// HotWindow: a number is hot when it appeared in the HotWindow most recent draws
	HotWindow int
	// ColdWindow: a number is cold when it was never drawn or last appeared more than ColdWindow draws ago
	ColdWindow int
}

// DefaultConfig returns the default windows (10 contests each)
func DefaultConfig() Config {
	return Config{
		HotWindow:  10,
		ColdWindow: 10,
	}
}

// Analyzer builds frequency tables. Tables are cached per store version, so
// repeated calls against an unchanged history return the same table.
type Analyzer struct {
	cfg        Config
	classifier *quadrants.Classifier

	mu     sync.Mutex
	cached *Table
	builds int
	log    zerolog.Logger
}

// NewAnalyzer creates a new frequency analyzer
func NewAnalyzer(cfg Config, classifier *quadrants.Classifier, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		classifier: classifier,
		log:        log.With().Str("component", "frequency_analyzer").Logger(),
	}
}

// Config returns the windows in use
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze returns the frequency table for the source's current snapshot.
func (a *Analyzer) Analyze(src domain.DrawSource) *Table {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil && a.cached.version == src.Version() {
		return a.cached
	}

	table := build(src, a.cfg, a.classifier)
	a.cached = table
	a.builds++

	a.log.Debug().
		Uint64("version", table.version).
		Int("draws", table.draws).
		Int("hot", len(table.Hot())).
		Int("cold", len(table.Cold())).
		Msg("Built frequency table")

	return table
}

// Builds counts how many tables were computed rather than served from cache.
func (a *Analyzer) Builds() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.builds
}

// ProfileOf returns the profile of a single number.
func (a *Analyzer) ProfileOf(src domain.DrawSource, n int) (domain.FrequencyProfile, error) {
	return a.Analyze(src).Profile(n)
}

// build walks the history once, oldest first.
func build(src domain.DrawSource, cfg Config, classifier *quadrants.Classifier) *Table {
	var lastSeen [domain.MaxNumber + 1]int
	var counts [domain.MaxNumber + 1]int
	var quadrantTotals domain.QuadrantDistribution

	draws := 0
	for d := range src.All() {
		for _, n := range d.Numbers {
			counts[n]++
			lastSeen[n] = draws + 1 // 1-based so zero means never
			if q, err := classifier.Classify(n); err == nil {
				quadrantTotals[q]++
			}
		}
		draws++
	}

	t := &Table{
		version:        src.Version(),
		draws:          draws,
		cfg:            cfg,
		quadrantTotals: quadrantTotals,
	}

	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		p := domain.FrequencyProfile{
			Number: n,
			Count:  counts[n],
			Seen:   lastSeen[n] > 0,
		}
		if p.Seen {
			p.TurnsSince = draws - lastSeen[n]
		} else {
			p.TurnsSince = draws
		}
		p.Hot = p.Seen && p.TurnsSince < cfg.HotWindow
		p.Cold = !p.Seen || p.TurnsSince > cfg.ColdWindow
		t.profiles[n] = p
	}

	return t
}
