package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// End alignment strategies for fast (stream copy) cuts. Containers drop
// trailing non-keyframe frames on their own, so "none" is the default;
// "keyframe" additionally snaps the out point forward to the next keyframe.
const (
	EndAlignNone     = "none"
	EndAlignKeyframe = "keyframe"
)

// Config holds all application configuration
type Config struct {
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Encoder EncoderConfig `yaml:"encoder"`
	Audio   AudioConfig   `yaml:"audio"`
	Export  ExportConfig  `yaml:"export"`
	Preview PreviewConfig `yaml:"preview"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Threads     int    `yaml:"threads"`
}

// EncoderConfig is the fixed profile used when a precise cut forces a
// re-encode of the video stream.
type EncoderConfig struct {
	Codec  string `yaml:"codec"`
	CRF    int    `yaml:"crf"`
	Preset string `yaml:"preset"`
}

type AudioConfig struct {
	Codec   string `yaml:"codec"`
	Bitrate string `yaml:"bitrate"`
}

type ExportConfig struct {
	EndAlign     string `yaml:"end_align"`
	OutputSuffix string `yaml:"output_suffix"`
}

// PreviewConfig controls the low-rate per-track WAV extraction used for
// waveform display.
type PreviewConfig struct {
	SampleRate int `yaml:"sample_rate"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	switch c.Export.EndAlign {
	case EndAlignNone, EndAlignKeyframe:
	default:
		return fmt.Errorf("invalid export.end_align %q", c.Export.EndAlign)
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return fmt.Errorf("encoder.crf must be between 0 and 51, got %d", c.Encoder.CRF)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Threads:     0,
		},
		Encoder: EncoderConfig{
			Codec:  "libx264",
			CRF:    18,
			Preset: "fast",
		},
		Audio: AudioConfig{
			Codec:   "aac",
			Bitrate: "192k",
		},
		Export: ExportConfig{
			EndAlign:     EndAlignNone,
			OutputSuffix: "_cut",
		},
		Preview: PreviewConfig{
			SampleRate: 8000,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".mixcut", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
