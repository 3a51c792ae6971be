// Package session owns the state of the one loaded file: probed media info,
// keyframe index, timeline and audio track set. The interactive layer
// mutates timeline and tracks through the session; exports run against a
// spec resolved up front, so nothing the user edits afterwards can reach an
// in-flight export.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LucaFagnoni/AudioMerge/internal/config"
	"github.com/LucaFagnoni/AudioMerge/internal/export"
	"github.com/LucaFagnoni/AudioMerge/internal/ffmpeg"
	"github.com/LucaFagnoni/AudioMerge/internal/keyframe"
	"github.com/LucaFagnoni/AudioMerge/internal/planner"
	"github.com/LucaFagnoni/AudioMerge/internal/timeline"
	"github.com/LucaFagnoni/AudioMerge/internal/tracks"
	"github.com/LucaFagnoni/AudioMerge/pkg/util"
)

// ErrNoFileLoaded is returned by operations that need a loaded file.
var ErrNoFileLoaded = errors.New("no file loaded")

// Engine is the capability boundary to the external media tool. The
// planning core depends only on this interface; tests substitute canned
// responses.
type Engine interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
	Keyframes(ctx context.Context, path string) ([]float64, error)
	Execute(ctx context.Context, spec *export.Spec, progress ffmpeg.ProgressFunc) error
	ExtractPreview(ctx context.Context, input string, streamIndex int, output string, sampleRate int) error
}

// Session is the single active editing session.
type Session struct {
	logger zerolog.Logger
	engine Engine
	cfg    *config.Config

	path     string
	info     *ffmpeg.MediaInfo
	index    *keyframe.Index
	timeline *timeline.Timeline
	tracks   *tracks.Set
}

// New creates an empty session backed by the given engine.
func New(logger zerolog.Logger, engine Engine, cfg *config.Config) *Session {
	return &Session{
		logger: logger.With().Str("component", "session").Logger(),
		engine: engine,
		cfg:    cfg,
	}
}

// Load probes a file and rebuilds all derived state. Any previously loaded
// file is discarded first, even if loading the new one fails.
func (s *Session) Load(ctx context.Context, path string) error {
	s.Unload()

	info, err := s.engine.Probe(ctx, path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	stamps, err := s.engine.Keyframes(ctx, path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	tl, err := timeline.New(info.Duration.Seconds(), info.FPS)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	trackList := make([]tracks.Track, 0, len(info.AudioStreams))
	for _, st := range info.AudioStreams {
		trackList = append(trackList, tracks.Track{
			StreamIndex: st.StreamIndex,
			Codec:       st.Codec,
			Language:    st.Language,
			Channels:    st.Channels,
			SampleRate:  st.SampleRate,
			Enabled:     true,
			GainDB:      0,
		})
	}

	s.path = path
	s.info = info
	s.index = keyframe.New(stamps)
	s.timeline = tl
	s.tracks = tracks.NewSet(trackList)

	s.logger.Info().
		Str("file", path).
		Float64("fps", info.FPS).
		Int("total_frames", tl.TotalFrames()).
		Int("keyframes", s.index.Len()).
		Int("audio_tracks", s.tracks.Len()).
		Msg("file loaded")

	return nil
}

// Unload discards the loaded file and all derived state.
func (s *Session) Unload() {
	s.path = ""
	s.info = nil
	s.index = nil
	s.timeline = nil
	s.tracks = nil
}

// Loaded reports whether a file is loaded.
func (s *Session) Loaded() bool { return s.info != nil }

// Path returns the loaded file's path.
func (s *Session) Path() string { return s.path }

// Info returns the probed media info, nil when nothing is loaded.
func (s *Session) Info() *ffmpeg.MediaInfo { return s.info }

// Keyframes returns the keyframe index, nil when nothing is loaded.
func (s *Session) Keyframes() *keyframe.Index { return s.index }

// Timeline returns the timeline model, nil when nothing is loaded.
func (s *Session) Timeline() *timeline.Timeline { return s.timeline }

// Tracks returns the audio track set, nil when nothing is loaded.
func (s *Session) Tracks() *tracks.Set { return s.tracks }

// DefaultOutputPath is the autosave target next to the source file.
func (s *Session) DefaultOutputPath() string {
	if s.path == "" {
		return ""
	}
	return util.SiblingPath(s.path, s.cfg.Export.OutputSuffix, ".mp4")
}

// PlanCut computes the cut plan for the current selection.
func (s *Session) PlanCut(mode planner.Mode) (planner.Plan, error) {
	if !s.Loaded() {
		return planner.Plan{}, ErrNoFileLoaded
	}

	return planner.Build(planner.Request{
		InFrame:   s.timeline.In(),
		OutFrame:  s.timeline.Out(),
		FrameRate: s.timeline.FrameRate(),
		Mode:      mode,
		EndAlign:  s.endAlign(),
	}, s.index)
}

// BuildSpec resolves a complete export spec for the current state. All
// planning errors surface here, before any process starts. An empty output
// path selects the autosave target.
func (s *Session) BuildSpec(outputPath string, mode planner.Mode, normalize bool) (*export.Spec, error) {
	if !s.Loaded() {
		return nil, ErrNoFileLoaded
	}

	plan, err := s.PlanCut(mode)
	if err != nil {
		return nil, err
	}

	if outputPath == "" {
		outputPath = s.DefaultOutputPath()
	}

	builder := export.NewBuilder(
		export.EncoderParams{
			Codec:  s.cfg.Encoder.Codec,
			CRF:    s.cfg.Encoder.CRF,
			Preset: s.cfg.Encoder.Preset,
		},
		export.AudioParams{
			Codec:   s.cfg.Audio.Codec,
			Bitrate: s.cfg.Audio.Bitrate,
		},
	)

	return builder.Build(s.path, outputPath, plan, s.tracks, normalize)
}

// Result is the terminal outcome of an export job.
type Result struct {
	OutputPath string
	Err        error
}

// Job is one in-flight export. Done delivers exactly one Result; Cancel
// terminates the engine process, after which the output path must be
// treated as invalid.
type Job struct {
	ID   string
	Spec *export.Spec

	done   chan Result
	cancel context.CancelFunc
}

// Done returns the completion channel.
func (j *Job) Done() <-chan Result { return j.done }

// Cancel requests best-effort termination of the export.
func (j *Job) Cancel() { j.cancel() }

// Export resolves the spec synchronously, then runs the engine call on its
// own goroutine. The returned job carries a snapshot; later timeline or
// track edits do not affect it. Failed exports are never retried here;
// the result is surfaced and the caller decides.
func (s *Session) Export(ctx context.Context, outputPath string, mode planner.Mode, normalize bool, progress ffmpeg.ProgressFunc) (*Job, error) {
	spec, err := s.BuildSpec(outputPath, mode, normalize)
	if err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:     uuid.NewString(),
		Spec:   spec,
		done:   make(chan Result, 1),
		cancel: cancel,
	}

	s.logger.Info().
		Str("job", job.ID).
		Str("output", spec.OutputPath).
		Str("mode", spec.Plan.Mode.String()).
		Msg("export started")

	go func() {
		defer cancel()
		err := s.engine.Execute(jobCtx, spec, progress)
		if err != nil {
			s.logger.Error().Str("job", job.ID).Err(err).Msg("export failed")
		} else {
			s.logger.Info().Str("job", job.ID).Str("output", spec.OutputPath).Msg("export finished")
		}
		job.done <- Result{OutputPath: spec.OutputPath, Err: err}
	}()

	return job, nil
}

// ExtractPreviews writes one low-rate mono WAV per audio track into dir and
// returns the paths keyed by stream index. All tracks are extracted, not
// just enabled ones, since the UI shows waveforms for muted tracks too.
func (s *Session) ExtractPreviews(ctx context.Context, dir string) (map[int]string, error) {
	if !s.Loaded() {
		return nil, ErrNoFileLoaded
	}
	if err := util.EnsureDir(dir); err != nil {
		return nil, err
	}

	previews := make(map[int]string, s.tracks.Len())
	for _, t := range s.tracks.All() {
		out := filepath.Join(dir, fmt.Sprintf("track_%d.wav", t.StreamIndex))
		if err := s.engine.ExtractPreview(ctx, s.path, t.StreamIndex, out, s.cfg.Preview.SampleRate); err != nil {
			return nil, err
		}
		previews[t.StreamIndex] = out
	}

	return previews, nil
}

func (s *Session) endAlign() planner.EndAlign {
	if s.cfg.Export.EndAlign == config.EndAlignKeyframe {
		return planner.EndAlignKeyframe
	}
	return planner.EndAlignNone
}
