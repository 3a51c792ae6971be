// Package timeline models the playhead and IN/OUT selection of the loaded
// file in the frame domain. All stepping is integer frame arithmetic; times
// are derived on demand, so repeated steps never accumulate float drift.
package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeline is returned when probed duration or frame rate
	// cannot support frame-accurate editing.
	ErrInvalidTimeline = errors.New("invalid timeline parameters")

	// ErrInvalidMark is returned when a mark operation would violate
	// inFrame < outFrame. The prior mark is left unchanged.
	ErrInvalidMark = errors.New("mark would invert selection")
)

// Timeline holds the current playhead and selection for one loaded file.
// Invariant: 0 <= in < out <= total-1 at all times.
type Timeline struct {
	duration float64
	fps      float64
	total    int

	current int
	in      int
	out     int
}

// New creates a timeline for a file of the given duration and frame rate.
// Initial state: current=0, in=0, out=totalFrames-1.
func New(durationSeconds, fps float64) (*Timeline, error) {
	if durationSeconds <= 0 || fps <= 0 {
		return nil, fmt.Errorf("%w: duration=%.3fs fps=%.3f", ErrInvalidTimeline, durationSeconds, fps)
	}

	total := int(durationSeconds * fps)
	if total < 2 {
		return nil, fmt.Errorf("%w: only %d frame(s), nothing to cut", ErrInvalidTimeline, total)
	}

	return &Timeline{
		duration: durationSeconds,
		fps:      fps,
		total:    total,
		current:  0,
		in:       0,
		out:      total - 1,
	}, nil
}

// Seek moves the playhead to frame, clamped to [0, totalFrames-1],
// and returns the resulting frame.
func (t *Timeline) Seek(frame int) int {
	if frame < 0 {
		frame = 0
	}
	if frame > t.total-1 {
		frame = t.total - 1
	}
	t.current = frame
	return t.current
}

// SeekSeconds moves the playhead to the frame containing the given time.
func (t *Timeline) SeekSeconds(seconds float64) int {
	return t.Seek(t.FrameAt(seconds))
}

// StepForward advances the playhead by exactly one frame.
func (t *Timeline) StepForward() int {
	return t.Seek(t.current + 1)
}

// StepBackward moves the playhead back by exactly one frame.
func (t *Timeline) StepBackward() int {
	return t.Seek(t.current - 1)
}

// MarkIn sets the IN point to the current frame. Fails with ErrInvalidMark
// if that would not leave it strictly before the OUT point.
func (t *Timeline) MarkIn() (int, error) {
	if t.current >= t.out {
		return t.in, fmt.Errorf("%w: in=%d out=%d", ErrInvalidMark, t.current, t.out)
	}
	t.in = t.current
	return t.in, nil
}

// MarkOut sets the OUT point to the current frame. Fails with ErrInvalidMark
// if that would not leave it strictly after the IN point.
func (t *Timeline) MarkOut() (int, error) {
	if t.current <= t.in {
		return t.out, fmt.Errorf("%w: in=%d out=%d", ErrInvalidMark, t.in, t.current)
	}
	t.out = t.current
	return t.out, nil
}

// Current returns the playhead frame.
func (t *Timeline) Current() int { return t.current }

// In returns the IN frame.
func (t *Timeline) In() int { return t.in }

// Out returns the OUT frame.
func (t *Timeline) Out() int { return t.out }

// TotalFrames returns the number of frames in the file.
func (t *Timeline) TotalFrames() int { return t.total }

// FrameRate returns the frame rate in frames per second.
func (t *Timeline) FrameRate() float64 { return t.fps }

// DurationSeconds returns the probed file duration.
func (t *Timeline) DurationSeconds() float64 { return t.duration }

// FrameDuration returns the duration of a single frame in seconds.
func (t *Timeline) FrameDuration() float64 { return 1.0 / t.fps }

// TimeAt converts a frame number to its timestamp in seconds.
func (t *Timeline) TimeAt(frame int) float64 {
	return float64(frame) / t.fps
}

// FrameAt converts a timestamp in seconds to the containing frame number.
func (t *Timeline) FrameAt(seconds float64) int {
	return int(seconds * t.fps)
}
