package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateStrip(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateProbe() error {
	if c.Probe.TimeoutSeconds < 0 {
		return errors.New("probe.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDecode() error {
	if c.Decode.PreviewWidth < 16 {
		return errors.New("decode.preview_width must be at least 16")
	}
	if c.Decode.PreviewWidth%2 != 0 {
		return errors.New("decode.preview_width must be even")
	}
	if c.Decode.AudioSampleRate < 8000 || c.Decode.AudioSampleRate > 192000 {
		return fmt.Errorf("decode.audio_sample_rate %d out of range (8000-192000)", c.Decode.AudioSampleRate)
	}
	if c.Decode.AudioChannels < 1 || c.Decode.AudioChannels > 8 {
		return fmt.Errorf("decode.audio_channels %d out of range (1-8)", c.Decode.AudioChannels)
	}
	return nil
}

func (c *Config) validateStrip() error {
	if c.Strip.Frames < 1 {
		return errors.New("strip.frames must be at least 1")
	}
	if c.Strip.Frames > 500 {
		return errors.New("strip.frames must not exceed 500")
	}
	if c.Strip.ThumbHeight < 8 {
		return errors.New("strip.thumb_height must be at least 8")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
