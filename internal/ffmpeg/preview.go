package ffmpeg

import (
	"context"
	"fmt"
)

// ExtractPreview writes one audio track as a mono low-rate WAV for waveform
// display. The whole track is extracted but at a sample rate low enough to
// keep the temp file small.
func (e *Executor) ExtractPreview(ctx context.Context, input string, streamIndex int, output string, sampleRate int) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}
	if sampleRate <= 0 {
		sampleRate = 8000
	}

	e.logger.Debug().
		Str("input", input).
		Int("track", streamIndex).
		Str("output", output).
		Msg("extracting preview track")

	args := []string{
		"-i", input,
		"-map", fmt.Sprintf("0:a:%d", streamIndex),
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-f", "wav",
		output,
	}

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("preview extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("preview extraction for track %d failed: %w", streamIndex, err)
	}

	return nil
}
