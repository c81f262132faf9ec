package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Editor EditorConfig `yaml:"editor"`
	Puzzle PuzzleConfig `yaml:"puzzle"`
	Export ExportConfig `yaml:"export"`
	Audio  AudioConfig  `yaml:"audio"`
}

// StoreConfig locates the local document database.
type StoreConfig struct {
	Path     string `yaml:"path"      env:"STORE_PATH"      env-default:"materials.db"`
	InMemory bool   `yaml:"in_memory" env:"STORE_IN_MEMORY" env-default:"false"`
}

// LogConfig holds logging settings. The terminal owns stdout, so logs go to File.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file"  env:"LOG_FILE"  env-default:"materials.log"`
}

// EditorConfig holds the authoring surface and tool defaults.
type EditorConfig struct {
	SurfaceWidth  int    `yaml:"surface_width"  env:"EDITOR_SURFACE_WIDTH"  env-default:"800"`
	SurfaceHeight int    `yaml:"surface_height" env:"EDITOR_SURFACE_HEIGHT" env-default:"600"`
	CellWidth     int    `yaml:"cell_width"     env:"EDITOR_CELL_WIDTH"     env-default:"8"`
	CellHeight    int    `yaml:"cell_height"    env:"EDITOR_CELL_HEIGHT"    env-default:"16"`
	BrushSize     int    `yaml:"brush_size"     env:"EDITOR_BRUSH_SIZE"     env-default:"5"`
	BrushColor    string `yaml:"brush_color"    env:"EDITOR_BRUSH_COLOR"    env-default:"#000000"`
	HandleSize    int    `yaml:"handle_size"    env:"EDITOR_HANDLE_SIZE"    env-default:"12"`
	Confirmations bool   `yaml:"confirmations"  env:"EDITOR_CONFIRMATIONS"  env-default:"true"`
}

// PuzzleConfig holds student runtime settings.
type PuzzleConfig struct {
	FlashDuration time.Duration `yaml:"flash_duration" env:"PUZZLE_FLASH_DURATION" env-default:"1s"`
}

// ExportConfig holds PNG export settings.
type ExportConfig struct {
	Dir string `yaml:"dir" env:"EXPORT_DIR" env-default:""`
}

// AudioConfig describes the raw PCM capture source. An empty Source
// means no microphone is available.
type AudioConfig struct {
	Source        string `yaml:"source"          env:"AUDIO_SOURCE"          env-default:""`
	SampleRate    int    `yaml:"sample_rate"     env:"AUDIO_SAMPLE_RATE"     env-default:"16000"`
	Channels      int    `yaml:"channels"        env:"AUDIO_CHANNELS"        env-default:"1"`
	BitsPerSample int    `yaml:"bits_per_sample" env:"AUDIO_BITS_PER_SAMPLE" env-default:"16"`
}

// ExportPath joins name onto the export directory, creating it when set.
func (e ExportConfig) ExportPath(name string) (string, error) {
	if e.Dir == "" {
		return name, nil
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir %s: %w", e.Dir, err)
	}
	return filepath.Join(e.Dir, name), nil
}
