package config

import (
	"fmt"
	"regexp"
	"slices"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if err := c.Editor.validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if c.Puzzle.FlashDuration <= 0 {
		return fmt.Errorf("puzzle.flash_duration must be > 0 (got %v)", c.Puzzle.FlashDuration)
	}
	if err := c.Audio.validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return nil
}

func (e *EditorConfig) validate() error {
	if e.SurfaceWidth <= 0 || e.SurfaceHeight <= 0 {
		return fmt.Errorf("surface must be positive (got %dx%d)", e.SurfaceWidth, e.SurfaceHeight)
	}
	if e.CellWidth <= 0 || e.CellHeight <= 0 {
		return fmt.Errorf("cell size must be positive (got %dx%d)", e.CellWidth, e.CellHeight)
	}
	if e.BrushSize <= 0 {
		return fmt.Errorf("brush_size must be > 0 (got %d)", e.BrushSize)
	}
	if !hexColor.MatchString(e.BrushColor) {
		return fmt.Errorf("brush_color must be a hex colour (got %q)", e.BrushColor)
	}
	if e.HandleSize <= 0 {
		return fmt.Errorf("handle_size must be > 0 (got %d)", e.HandleSize)
	}
	return nil
}

func (a *AudioConfig) validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be > 0 (got %d)", a.SampleRate)
	}
	if a.Channels <= 0 {
		return fmt.Errorf("channels must be > 0 (got %d)", a.Channels)
	}
	if a.BitsPerSample != 8 && a.BitsPerSample != 16 {
		return fmt.Errorf("bits_per_sample must be 8 or 16 (got %d)", a.BitsPerSample)
	}
	return nil
}
