package domain

import "iter"

// DrawSource is the read side of the historical draw store.
// Implementations are immutable snapshots and safe for concurrent use.
type DrawSource interface {
	// Contains reports an exact 6-of-6 set match against any past draw
	Contains(c Combination) bool
	// All iterates every draw, oldest first. Restartable.
	All() iter.Seq[Draw]
	// RecentDraws returns the k most recent draws, most recent first
	RecentDraws(k int) []Draw
	Len() int
	// Version identifies the loaded snapshot; it changes on every reload
	Version() uint64
}
