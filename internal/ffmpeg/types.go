package ffmpeg

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProbeFailed wraps every failure of the probe boundary: tool
	// missing, file unreadable, or unparseable output.
	ErrProbeFailed = errors.New("probe failed")

	// ErrTruncatedOutput is returned when the engine exits cleanly but the
	// output file is missing or empty.
	ErrTruncatedOutput = errors.New("engine reported success but output is missing or empty")
)

// ExecError is a clean non-zero exit of the media engine, with the captured
// diagnostic text.
type ExecError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
}

// StreamInfo describes one probed audio stream. StreamIndex is the ordinal
// among audio streams (ffmpeg 0:a:<n>), not the container stream index.
type StreamInfo struct {
	StreamIndex int
	Codec       string
	Language    string
	Channels    int
	SampleRate  int
}

// MediaInfo contains metadata about a loaded media file. Immutable once
// probed.
type MediaInfo struct {
	FilePath     string
	Duration     time.Duration
	Width        int
	Height       int
	FPS          float64
	VideoCodec   string
	AudioStreams []StreamInfo
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	Speed      string
	Percentage float64
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}
