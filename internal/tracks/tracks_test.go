package tracks

import (
	"errors"
	"math"
	"testing"
)

func newTestSet() *Set {
	return NewSet([]Track{
		{StreamIndex: 0, Codec: "aac", Language: "eng", Channels: 2, SampleRate: 48000, Enabled: true},
		{StreamIndex: 1, Codec: "ac3", Language: "ita", Channels: 6, SampleRate: 48000, Enabled: true},
		{StreamIndex: 2, Codec: "aac", Language: "jpn", Channels: 2, SampleRate: 44100, Enabled: true},
	})
}

func TestSetGain(t *testing.T) {
	s := newTestSet()

	if err := s.SetGain(1, -6.0); err != nil {
		t.Fatalf("SetGain failed: %v", err)
	}
	tr, ok := s.Get(1)
	if !ok {
		t.Fatal("track 1 not found")
	}
	if tr.GainDB != -6.0 {
		t.Errorf("expected gain -6.0, got %v", tr.GainDB)
	}
}

func TestSetGainRejectsOutOfRange(t *testing.T) {
	s := newTestSet()

	tests := []struct {
		name string
		db   float64
		ok   bool
	}{
		{"min boundary", -30.0, true},
		{"max boundary", 30.0, true},
		{"below min", -30.1, false},
		{"above max", 30.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetGain(0, tt.db)
			if tt.ok && err != nil {
				t.Errorf("SetGain(%v) unexpected error: %v", tt.db, err)
			}
			if !tt.ok && !errors.Is(err, ErrGainOutOfRange) {
				t.Errorf("SetGain(%v) error = %v, want ErrGainOutOfRange", tt.db, err)
			}
		})
	}

	// rejected gain must not change stored state
	if err := s.SetGain(2, 5.0); err != nil {
		t.Fatalf("SetGain failed: %v", err)
	}
	_ = s.SetGain(2, 99.0)
	tr, _ := s.Get(2)
	if tr.GainDB != 5.0 {
		t.Errorf("rejected gain must leave track unchanged, got %v", tr.GainDB)
	}
}

func TestUnknownTrack(t *testing.T) {
	s := newTestSet()

	if err := s.SetGain(7, 0); !errors.Is(err, ErrUnknownTrack) {
		t.Errorf("SetGain on unknown track error = %v, want ErrUnknownTrack", err)
	}
	if err := s.SetEnabled(7, false); !errors.Is(err, ErrUnknownTrack) {
		t.Errorf("SetEnabled on unknown track error = %v, want ErrUnknownTrack", err)
	}
}

func TestEnabledPreservesProbeOrder(t *testing.T) {
	s := newTestSet()

	if err := s.SetEnabled(1, false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}

	enabled := s.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled tracks, got %d", len(enabled))
	}
	if enabled[0].StreamIndex != 0 || enabled[1].StreamIndex != 2 {
		t.Errorf("expected enabled tracks [0,2], got [%d,%d]", enabled[0].StreamIndex, enabled[1].StreamIndex)
	}
}

func TestLinearGain(t *testing.T) {
	tests := []struct {
		db   float64
		want float64
	}{
		{0, 1.0},
		{-6, 0.501187},
		{6, 1.995262},
		{-30, 0.031623},
	}

	for _, tt := range tests {
		got := LinearGain(tt.db)
		if math.Abs(got-tt.want) > 1e-5 {
			t.Errorf("LinearGain(%v) = %v, want %v", tt.db, got, tt.want)
		}
	}
}
