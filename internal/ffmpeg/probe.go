package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/LucaFagnoni/AudioMerge/pkg/util"
)

// Probe extracts stream metadata from a media file. A file without a video
// stream or a readable duration is rejected; a missing frame rate falls
// back to 30 fps, matching what players assume.
func (e *Executor) Probe(ctx context.Context, filePath string) (*MediaInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrProbeFailed)
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %v", ErrProbeFailed, err)
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("%w: parsing ffprobe output: %v", ErrProbeFailed, err)
	}

	info := &MediaInfo{
		FilePath: filePath,
	}

	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || dur <= 0 {
		return nil, fmt.Errorf("%w: no readable duration for %s", ErrProbeFailed, filePath)
	}
	info.Duration = time.Duration(dur * float64(time.Second))

	haveVideo := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if haveVideo {
				continue // plan against the first video stream only
			}
			haveVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			if stream.RFrameRate != "" {
				info.FPS = util.ParseFrameRate(stream.RFrameRate)
			}
			if info.FPS == 0 {
				info.FPS = 30.0
			}

		case "audio":
			sampleRate, _ := strconv.Atoi(stream.SampleRate)
			info.AudioStreams = append(info.AudioStreams, StreamInfo{
				StreamIndex: len(info.AudioStreams),
				Codec:       stream.CodecName,
				Language:    stream.Tags.Language,
				Channels:    stream.Channels,
				SampleRate:  sampleRate,
			})
		}
	}

	if !haveVideo {
		return nil, fmt.Errorf("%w: no video stream in %s", ErrProbeFailed, filePath)
	}

	e.logger.Debug().
		Str("file", filePath).
		Dur("duration", info.Duration).
		Float64("fps", info.FPS).
		Int("audio_streams", len(info.AudioStreams)).
		Msg("probed media file")

	return info, nil
}

// Keyframes scans the first video stream's packets and returns keyframe
// timestamps in seconds. An all-intra or very short file may legitimately
// return few entries; an empty result is not an error here, fast-mode
// planning decides what to do with it.
func (e *Executor) Keyframes(ctx context.Context, filePath string) ([]float64, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrProbeFailed)
	}

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,flags",
		"-of", "csv=print_section=0",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: keyframe scan: %v", ErrProbeFailed, err)
	}

	stamps := parseKeyframePackets(string(output))

	e.logger.Debug().
		Str("file", filePath).
		Int("keyframes", len(stamps)).
		Msg("keyframe scan complete")

	return stamps, nil
}

// parseKeyframePackets extracts keyframe timestamps from ffprobe csv packet
// output. Lines look like "2.000000,K__"; packets without a usable pts_time
// are skipped.
func parseKeyframePackets(output string) []float64 {
	var stamps []float64

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 || !strings.Contains(parts[1], "K") {
			continue
		}
		if pts, err := strconv.ParseFloat(parts[0], 64); err == nil {
			stamps = append(stamps, pts)
		}
	}

	return stamps
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Channels   int    `json:"channels"`
		SampleRate string `json:"sample_rate"`
		Tags       struct {
			Language string `json:"language"`
		} `json:"tags"`
	} `json:"streams"`
}
