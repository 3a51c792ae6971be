package timeline

import (
	"errors"
	"testing"
)

func newTestTimeline(t *testing.T) *Timeline {
	t.Helper()
	// 10 seconds at 30 fps = 300 frames
	tl, err := New(10.0, 30.0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tl
}

func TestInitialState(t *testing.T) {
	tl := newTestTimeline(t)

	if tl.TotalFrames() != 300 {
		t.Errorf("expected 300 frames, got %d", tl.TotalFrames())
	}
	if tl.Current() != 0 {
		t.Errorf("expected playhead at 0, got %d", tl.Current())
	}
	if tl.In() != 0 {
		t.Errorf("expected in=0, got %d", tl.In())
	}
	if tl.Out() != 299 {
		t.Errorf("expected out=299, got %d", tl.Out())
	}
}

func TestNewRejectsInvalidInputs(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		fps      float64
	}{
		{"zero duration", 0, 30},
		{"negative duration", -1, 30},
		{"zero fps", 10, 0},
		{"single frame", 0.01, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.duration, tt.fps); !errors.Is(err, ErrInvalidTimeline) {
				t.Errorf("New(%v, %v) error = %v, want ErrInvalidTimeline", tt.duration, tt.fps, err)
			}
		})
	}
}

func TestSeekClamps(t *testing.T) {
	tl := newTestTimeline(t)

	if got := tl.Seek(-10); got != 0 {
		t.Errorf("Seek(-10) = %d, want 0", got)
	}
	if got := tl.Seek(1000); got != 299 {
		t.Errorf("Seek(1000) = %d, want 299", got)
	}
	if got := tl.Seek(150); got != 150 {
		t.Errorf("Seek(150) = %d, want 150", got)
	}
}

func TestStepIsIntegerExact(t *testing.T) {
	tl := newTestTimeline(t)

	tl.Seek(100)
	for i := 0; i < 50; i++ {
		tl.StepForward()
	}
	if tl.Current() != 150 {
		t.Errorf("after 50 forward steps from 100, playhead = %d, want 150", tl.Current())
	}

	for i := 0; i < 200; i++ {
		tl.StepBackward()
	}
	if tl.Current() != 0 {
		t.Errorf("stepping past the start should clamp to 0, got %d", tl.Current())
	}

	tl.Seek(299)
	tl.StepForward()
	if tl.Current() != 299 {
		t.Errorf("stepping past the end should clamp to 299, got %d", tl.Current())
	}
}

func TestMarkInAndOut(t *testing.T) {
	tl := newTestTimeline(t)

	tl.Seek(65)
	if _, err := tl.MarkIn(); err != nil {
		t.Fatalf("MarkIn failed: %v", err)
	}
	tl.Seek(200)
	if _, err := tl.MarkOut(); err != nil {
		t.Fatalf("MarkOut failed: %v", err)
	}

	if tl.In() != 65 || tl.Out() != 200 {
		t.Errorf("expected selection [65,200], got [%d,%d]", tl.In(), tl.Out())
	}
}

func TestMarkInPastOutIsRejected(t *testing.T) {
	tl := newTestTimeline(t)

	tl.Seek(50)
	if _, err := tl.MarkIn(); err != nil {
		t.Fatalf("MarkIn failed: %v", err)
	}
	tl.Seek(100)
	if _, err := tl.MarkOut(); err != nil {
		t.Fatalf("MarkOut failed: %v", err)
	}

	// playhead at the out point: marking in must fail and keep the prior mark
	tl.Seek(100)
	if _, err := tl.MarkIn(); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("MarkIn at out point error = %v, want ErrInvalidMark", err)
	}
	tl.Seek(250)
	if _, err := tl.MarkIn(); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("MarkIn past out point error = %v, want ErrInvalidMark", err)
	}
	if tl.In() != 50 {
		t.Errorf("rejected MarkIn must leave in unchanged, got %d", tl.In())
	}
}

func TestMarkOutBeforeInIsRejected(t *testing.T) {
	tl := newTestTimeline(t)

	tl.Seek(100)
	if _, err := tl.MarkIn(); err != nil {
		t.Fatalf("MarkIn failed: %v", err)
	}

	tl.Seek(100)
	if _, err := tl.MarkOut(); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("MarkOut at in point error = %v, want ErrInvalidMark", err)
	}
	tl.Seek(20)
	if _, err := tl.MarkOut(); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("MarkOut before in point error = %v, want ErrInvalidMark", err)
	}
	if tl.Out() != 299 {
		t.Errorf("rejected MarkOut must leave out unchanged, got %d", tl.Out())
	}
}

func TestFrameTimeConversion(t *testing.T) {
	tl := newTestTimeline(t)

	if got := tl.TimeAt(65); got < 2.1666 || got > 2.1667 {
		t.Errorf("TimeAt(65) = %v, want ~2.16667", got)
	}
	if got := tl.FrameAt(2.1667); got != 65 {
		t.Errorf("FrameAt(2.1667) = %d, want 65", got)
	}
	if got := tl.FrameDuration(); got < 0.0333 || got > 0.0334 {
		t.Errorf("FrameDuration() = %v, want ~0.03333", got)
	}
}
