package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Encoder.Codec != "libx264" || cfg.Encoder.CRF != 18 || cfg.Encoder.Preset != "fast" {
		t.Errorf("unexpected encoder defaults: %+v", cfg.Encoder)
	}
	if cfg.Audio.Codec != "aac" || cfg.Audio.Bitrate != "192k" {
		t.Errorf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Export.EndAlign != EndAlignNone {
		t.Errorf("end_align default = %q, want %q", cfg.Export.EndAlign, EndAlignNone)
	}
	if cfg.Export.OutputSuffix != "_cut" {
		t.Errorf("output_suffix default = %q, want _cut", cfg.Export.OutputSuffix)
	}
	if cfg.Preview.SampleRate != 8000 {
		t.Errorf("preview sample_rate default = %d, want 8000", cfg.Preview.SampleRate)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
encoder:
  codec: libx265
  crf: 22
  preset: slow
export:
  end_align: keyframe
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Encoder.Codec != "libx265" || cfg.Encoder.CRF != 22 {
		t.Errorf("overrides not applied: %+v", cfg.Encoder)
	}
	if cfg.Export.EndAlign != EndAlignKeyframe {
		t.Errorf("end_align = %q, want keyframe", cfg.Export.EndAlign)
	}
	// untouched sections keep their defaults
	if cfg.Audio.Bitrate != "192k" {
		t.Errorf("audio bitrate = %q, want default 192k", cfg.Audio.Bitrate)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad end_align", "export:\n  end_align: always\n"},
		{"crf too high", "encoder:\n  crf: 99\n"},
		{"malformed yaml", "encoder: [not a map\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load should reject invalid config")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := defaultConfig()
	cfg.Encoder.CRF = 20
	cfg.Export.EndAlign = EndAlignKeyframe

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Encoder.CRF != 20 {
		t.Errorf("crf = %d, want 20", loaded.Encoder.CRF)
	}
	if loaded.Export.EndAlign != EndAlignKeyframe {
		t.Errorf("end_align = %q, want keyframe", loaded.Export.EndAlign)
	}
}
