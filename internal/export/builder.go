// Package export turns a cut plan and the audio track state into a
// fully-specified, engine-agnostic export spec. The spec is a value object:
// building it twice from the same inputs yields structurally identical
// results, and nothing here talks to the media engine.
package export

import (
	"errors"
	"fmt"

	"github.com/LucaFagnoni/AudioMerge/internal/planner"
	"github.com/LucaFagnoni/AudioMerge/internal/tracks"
)

// ErrNoActiveTimeline is returned when the builder is invoked without a
// valid cut plan.
var ErrNoActiveTimeline = errors.New("export requires a valid cut plan")

// VideoStrategy selects between stream copy and re-encode for the video
// stream.
type VideoStrategy int

const (
	// VideoCopy remuxes the original bitstream.
	VideoCopy VideoStrategy = iota
	// VideoReencode decodes and re-compresses with EncoderParams.
	VideoReencode
)

func (v VideoStrategy) String() string {
	if v == VideoCopy {
		return "copy"
	}
	return "reencode"
}

// EncoderParams is the fixed re-encode profile (constant quality).
type EncoderParams struct {
	Codec  string
	CRF    int
	Preset string
}

// AudioParams describes how mixed audio is encoded.
type AudioParams struct {
	Codec   string
	Bitrate string
}

// GainStage is one per-track gain adjustment, in source track order.
// Multiplier is the linear equivalent of GainDB (10^(dB/20)).
type GainStage struct {
	StreamIndex int
	GainDB      float64
	Multiplier  float64
}

// Spec is the complete, immutable description of one export. It is fully
// resolved before any process starts, so later edits to the timeline or
// track state cannot affect an in-flight export.
type Spec struct {
	InputPath  string
	OutputPath string

	Plan    planner.Plan
	Video   VideoStrategy
	Encoder EncoderParams

	// HasAudio false means the output carries no audio stream at all,
	// not a silent one. Gains is empty in that case.
	HasAudio  bool
	Gains     []GainStage
	Audio     AudioParams
	Normalize bool
}

// AudioCopyEligible reports whether the audio side can be stream-copied:
// exactly one enabled track at 0 dB with no normalization. The output is
// then bit-identical to the source track.
func (s *Spec) AudioCopyEligible() bool {
	return s.HasAudio && len(s.Gains) == 1 && s.Gains[0].GainDB == 0 && !s.Normalize
}

// Builder constructs export specs with a fixed encoder and audio profile.
type Builder struct {
	Encoder EncoderParams
	Audio   AudioParams
}

// NewBuilder creates a builder with the given profiles.
func NewBuilder(encoder EncoderParams, audio AudioParams) *Builder {
	return &Builder{Encoder: encoder, Audio: audio}
}

// Build resolves a spec from a cut plan, the track set and the normalize
// flag. Disabled tracks are omitted entirely; they are not muxed as muted
// streams. Gain bounds are re-checked here even though the track model
// enforces them, since an out-of-range gain reaching this point is a
// programming error worth surfacing.
func (b *Builder) Build(input, output string, plan planner.Plan, set *tracks.Set, normalize bool) (*Spec, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if !plan.Valid() {
		return nil, fmt.Errorf("%w: start=%.6f end=%.6f", ErrNoActiveTimeline, plan.StartSeconds, plan.EndSeconds)
	}

	enabled := set.Enabled()
	gains := make([]GainStage, 0, len(enabled))
	for _, t := range enabled {
		if t.GainDB < tracks.MinGainDB || t.GainDB > tracks.MaxGainDB {
			return nil, fmt.Errorf("track %d: %w: %.1f dB", t.StreamIndex, tracks.ErrGainOutOfRange, t.GainDB)
		}
		gains = append(gains, GainStage{
			StreamIndex: t.StreamIndex,
			GainDB:      t.GainDB,
			Multiplier:  tracks.LinearGain(t.GainDB),
		})
	}

	strategy := VideoCopy
	if plan.RequiresReencode {
		strategy = VideoReencode
	}

	spec := &Spec{
		InputPath:  input,
		OutputPath: output,
		Plan:       plan,
		Video:      strategy,
		Encoder:    b.Encoder,
		HasAudio:   len(gains) > 0,
		Audio:      b.Audio,
	}
	if spec.HasAudio {
		spec.Gains = gains
		spec.Normalize = normalize
	}

	return spec, nil
}
