// Package tracks models the per-audio-stream enable and gain state of the
// loaded file, independent of video.
package tracks

import (
	"errors"
	"fmt"
	"math"
)

// Gain bounds in decibels, matching the editor's slider range.
const (
	MinGainDB = -30.0
	MaxGainDB = 30.0
)

var (
	// ErrGainOutOfRange is returned for gains outside [MinGainDB, MaxGainDB].
	ErrGainOutOfRange = errors.New("gain out of range")

	// ErrUnknownTrack is returned when a stream index has no probed track.
	ErrUnknownTrack = errors.New("unknown audio track")
)

// Track is one probed audio stream with its user-editable state.
// StreamIndex is the ordinal among audio streams (ffmpeg 0:a:<n>).
type Track struct {
	StreamIndex int
	Codec       string
	Language    string
	Channels    int
	SampleRate  int

	Enabled bool
	GainDB  float64
}

// Set is the collection of audio tracks for the loaded file, kept in
// probe order.
type Set struct {
	tracks []Track
}

// NewSet builds a track set in the given (probe) order. All tracks start
// enabled at 0 dB unless the caller says otherwise.
func NewSet(tracks []Track) *Set {
	ts := make([]Track, len(tracks))
	copy(ts, tracks)
	return &Set{tracks: ts}
}

// Len returns the number of tracks.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tracks)
}

// All returns a copy of every track in probe order.
func (s *Set) All() []Track {
	if s == nil {
		return nil
	}
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Enabled returns the enabled tracks in probe order.
func (s *Set) Enabled() []Track {
	if s == nil {
		return nil
	}
	var out []Track
	for _, t := range s.tracks {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the track with the given stream index.
func (s *Set) Get(streamIndex int) (Track, bool) {
	if s == nil {
		return Track{}, false
	}
	for _, t := range s.tracks {
		if t.StreamIndex == streamIndex {
			return t, true
		}
	}
	return Track{}, false
}

// SetEnabled toggles a track on or off.
func (s *Set) SetEnabled(streamIndex int, enabled bool) error {
	i, err := s.find(streamIndex)
	if err != nil {
		return err
	}
	s.tracks[i].Enabled = enabled
	return nil
}

// SetGain sets a track's gain in decibels, rejecting values outside the
// slider range.
func (s *Set) SetGain(streamIndex int, db float64) error {
	if db < MinGainDB || db > MaxGainDB {
		return fmt.Errorf("%w: %.1f dB (want %.0f..%.0f)", ErrGainOutOfRange, db, MinGainDB, MaxGainDB)
	}
	i, err := s.find(streamIndex)
	if err != nil {
		return err
	}
	s.tracks[i].GainDB = db
	return nil
}

func (s *Set) find(streamIndex int) (int, error) {
	if s != nil {
		for i, t := range s.tracks {
			if t.StreamIndex == streamIndex {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: stream %d", ErrUnknownTrack, streamIndex)
}

// LinearGain converts decibels to a linear amplitude multiplier.
func LinearGain(db float64) float64 {
	return math.Pow(10, db/20.0)
}
