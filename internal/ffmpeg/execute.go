package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/LucaFagnoni/AudioMerge/internal/export"
	"github.com/LucaFagnoni/AudioMerge/pkg/util"
)

// stderrTailLines bounds the diagnostic text kept from a failed export.
const stderrTailLines = 60

// Execute runs a fully-resolved export spec. On cancellation the partial
// output file is removed so it can never be mistaken for a valid export.
// A clean non-zero exit comes back as *ExecError with the stderr tail.
func (e *Executor) Execute(ctx context.Context, spec *export.Spec, progress ProgressFunc) error {
	args, err := BuildArgs(spec)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("input", spec.InputPath).
		Str("output", spec.OutputPath).
		Str("mode", spec.Plan.Mode.String()).
		Str("video", spec.Video.String()).
		Int("audio_tracks", len(spec.Gains)).
		Bool("normalize", spec.Normalize).
		Msg("starting export")

	tail := newTailBuffer(stderrTailLines)
	cutSeconds := spec.Plan.Duration()

	runOpts := RunOptions{
		Args: args,
		ProgressHandler: func(p *Progress) {
			if cutSeconds > 0 && p.Time != "" {
				if t, perr := util.ParseTimestamp(p.Time); perr == nil {
					pct := t.Seconds() / cutSeconds * 100
					if pct > 99 {
						pct = 99
					}
					p.Percentage = pct
				}
			}
			if progress != nil {
				progress(p)
			}
		},
		LogHandler: func(line string) {
			tail.add(line)
			e.logger.Debug().Str("ffmpeg", line).Msg("export output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		if ctx.Err() != nil {
			util.CleanupFiles(spec.OutputPath)
			e.logger.Warn().Str("output", spec.OutputPath).Msg("export cancelled, partial output removed")
			return ctx.Err()
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ExecError{ExitCode: exitCode, Stderr: tail.String()}
	}

	stat, statErr := os.Stat(spec.OutputPath)
	if statErr != nil || stat.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrTruncatedOutput, spec.OutputPath)
	}

	e.logger.Info().Str("output", spec.OutputPath).Msg("export complete")
	return nil
}

// BuildArgs renders an export spec into ffmpeg arguments. Pure: no process
// is touched and identical specs always produce identical argv.
func BuildArgs(spec *export.Spec) ([]string, error) {
	if spec == nil {
		return nil, fmt.Errorf("export spec is required")
	}
	if !spec.Plan.Valid() {
		return nil, fmt.Errorf("%w: start=%.6f end=%.6f", export.ErrNoActiveTimeline, spec.Plan.StartSeconds, spec.Plan.EndSeconds)
	}

	args := []string{
		"-ss", util.FormatSeconds(spec.Plan.StartSeconds),
		"-to", util.FormatSeconds(spec.Plan.EndSeconds),
		"-i", spec.InputPath,
		"-map", "0:v:0",
	}

	switch spec.Video {
	case export.VideoCopy:
		args = append(args, "-c:v", "copy")
	case export.VideoReencode:
		args = append(args,
			"-c:v", spec.Encoder.Codec,
			"-crf", fmt.Sprintf("%d", spec.Encoder.CRF),
			"-preset", spec.Encoder.Preset,
		)
	}

	switch {
	case !spec.HasAudio:
		// No enabled tracks: no audio stream in the output at all.
		args = append(args, "-an")

	case spec.AudioCopyEligible():
		// Single track at 0 dB without normalization: bit-identical copy.
		args = append(args,
			"-map", fmt.Sprintf("0:a:%d", spec.Gains[0].StreamIndex),
			"-c:a", "copy",
		)

	default:
		args = append(args,
			"-filter_complex", AudioFilterGraph(spec),
			"-map", "[aout]",
			"-c:a", spec.Audio.Codec,
			"-b:a", spec.Audio.Bitrate,
		)
	}

	args = append(args, spec.OutputPath)
	return args, nil
}

// AudioFilterGraph builds the filter_complex for the spec's audio side:
// one gain stage per enabled track in source order, a mix stage when more
// than one track is enabled, and the dynamic-range normalizer strictly
// last so attenuated tracks are not amplified back up.
func AudioFilterGraph(spec *export.Spec) string {
	single := len(spec.Gains) == 1

	var parts []string
	var labels strings.Builder

	for i, g := range spec.Gains {
		stage := "anull"
		if g.GainDB != 0 {
			stage = fmt.Sprintf("volume=%.1fdB", g.GainDB)
		}
		out := fmt.Sprintf("a%d", i)
		if single && !spec.Normalize {
			out = "aout"
		}
		parts = append(parts, fmt.Sprintf("[0:a:%d]%s[%s]", g.StreamIndex, stage, out))
		fmt.Fprintf(&labels, "[%s]", out)
	}

	last := "a0"
	if !single {
		mixed := "aout"
		if spec.Normalize {
			mixed = "amix"
		}
		parts = append(parts, fmt.Sprintf("%samix=inputs=%d[%s]", labels.String(), len(spec.Gains), mixed))
		last = mixed
	}

	if spec.Normalize {
		parts = append(parts, fmt.Sprintf("[%s]dynaudnorm[aout]", last))
	}

	return strings.Join(parts, ";")
}

// tailBuffer keeps the last n lines of engine output for diagnostics.
type tailBuffer struct {
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "\n")
}
