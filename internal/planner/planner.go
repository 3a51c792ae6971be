// Package planner decides cut boundaries and whether re-encoding is
// unavoidable for a given IN/OUT selection.
package planner

import (
	"errors"
	"fmt"

	"github.com/LucaFagnoni/AudioMerge/internal/keyframe"
)

// ErrInvalidRange is returned when the IN frame does not precede the OUT
// frame. The timeline enforces this on every mark, so hitting it here means
// the request was constructed by hand.
var ErrInvalidRange = errors.New("in frame must precede out frame")

// Mode selects the cut strategy.
type Mode int

const (
	// Precise re-encodes so the cut lands exactly on the chosen frames.
	Precise Mode = iota
	// Fast stream-copies from the nearest keyframe at or before the IN point.
	Fast
)

func (m Mode) String() string {
	switch m {
	case Precise:
		return "precise"
	case Fast:
		return "fast"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// EndAlign selects how the OUT boundary is treated in fast mode. Most
// containers drop trailing non-keyframe frames on their own, but some
// container/codec combinations want GOP-aligned end cuts too.
type EndAlign int

const (
	// EndAlignNone keeps the OUT point as chosen.
	EndAlignNone EndAlign = iota
	// EndAlignKeyframe snaps the OUT point forward to the next keyframe.
	EndAlignKeyframe
)

// Request carries everything a plan is computed from. Plans are a pure
// function of the request plus the keyframe index: identical inputs always
// produce an identical plan.
type Request struct {
	InFrame   int
	OutFrame  int
	FrameRate float64
	Mode      Mode
	EndAlign  EndAlign
}

// Plan is a derived value object; recompute it whenever inputs change
// instead of mutating it.
type Plan struct {
	Mode             Mode
	StartSeconds     float64
	EndSeconds       float64
	RequiresReencode bool
}

// Duration returns the planned cut length in seconds.
func (p Plan) Duration() float64 {
	return p.EndSeconds - p.StartSeconds
}

// Valid reports whether the plan describes a non-empty cut window.
func (p Plan) Valid() bool {
	return p.EndSeconds > p.StartSeconds
}

// Build computes the cut plan for a request. Fast mode needs a populated
// keyframe index and fails with keyframe.ErrEmptyIndex otherwise; precise
// mode never consults the index.
func Build(req Request, idx *keyframe.Index) (Plan, error) {
	if req.FrameRate <= 0 {
		return Plan{}, fmt.Errorf("%w: frame rate %.3f", ErrInvalidRange, req.FrameRate)
	}
	if req.InFrame < 0 || req.InFrame >= req.OutFrame {
		return Plan{}, fmt.Errorf("%w: in=%d out=%d", ErrInvalidRange, req.InFrame, req.OutFrame)
	}

	inSeconds := float64(req.InFrame) / req.FrameRate
	outSeconds := float64(req.OutFrame) / req.FrameRate

	if req.Mode == Precise {
		return Plan{
			Mode:             Precise,
			StartSeconds:     inSeconds,
			EndSeconds:       outSeconds,
			RequiresReencode: true,
		}, nil
	}

	if idx.Len() == 0 {
		return Plan{}, fmt.Errorf("fast cut of [%d,%d]: %w", req.InFrame, req.OutFrame, keyframe.ErrEmptyIndex)
	}

	start := inSeconds
	if kf, ok := idx.NearestAtOrBefore(inSeconds); ok {
		// A keyframe within one frame below the IN point means the cut is
		// already aligned; snapping would only widen the window.
		frameDuration := 1.0 / req.FrameRate
		if kf <= inSeconds-frameDuration {
			start = kf
		}
	} else {
		start = 0
	}

	end := outSeconds
	if req.EndAlign == EndAlignKeyframe {
		if kf, ok := idx.NearestAtOrAfter(outSeconds); ok {
			end = kf
		}
	}

	return Plan{
		Mode:             Fast,
		StartSeconds:     start,
		EndSeconds:       end,
		RequiresReencode: false,
	}, nil
}
