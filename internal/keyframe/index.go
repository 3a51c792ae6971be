// Package keyframe holds the ordered keyframe timestamps of a video stream
// and answers nearest-keyframe queries for cut planning.
package keyframe

import (
	"errors"
	"sort"
)

// ErrEmptyIndex is returned when a keyframe-dependent operation is requested
// on a stream for which probing reported no keyframes.
var ErrEmptyIndex = errors.New("keyframe index is empty")

// Index is an immutable, sorted set of keyframe timestamps in seconds.
// Built once per loaded file; lookups are binary searches.
type Index struct {
	stamps []float64
}

// New builds an index from probe output. Input order does not matter;
// duplicates are dropped.
func New(stamps []float64) *Index {
	sorted := make([]float64, len(stamps))
	copy(sorted, stamps)
	sort.Float64s(sorted)

	unique := sorted[:0]
	for i, t := range sorted {
		if i == 0 || t != sorted[i-1] {
			unique = append(unique, t)
		}
	}

	return &Index{stamps: unique}
}

// Len returns the number of keyframes in the index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.stamps)
}

// Timestamps returns a copy of the ordered keyframe timestamps.
func (ix *Index) Timestamps() []float64 {
	if ix == nil {
		return nil
	}
	out := make([]float64, len(ix.stamps))
	copy(out, ix.stamps)
	return out
}

// NearestAtOrBefore returns the largest keyframe timestamp <= t.
// The second return value is false when no such keyframe exists.
func (ix *Index) NearestAtOrBefore(t float64) (float64, bool) {
	if ix.Len() == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(ix.stamps, t)
	if i < len(ix.stamps) && ix.stamps[i] == t {
		return t, true
	}
	if i == 0 {
		return 0, false
	}
	return ix.stamps[i-1], true
}

// NearestAtOrAfter returns the smallest keyframe timestamp >= t.
// The second return value is false when no such keyframe exists.
func (ix *Index) NearestAtOrAfter(t float64) (float64, bool) {
	if ix.Len() == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(ix.stamps, t)
	if i == len(ix.stamps) {
		return 0, false
	}
	return ix.stamps[i], true
}
