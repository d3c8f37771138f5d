package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProbe()
	c.normalizeDecode()
	c.normalizeStrip()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StripDir) == "" {
		c.Paths.StripDir = defaultStripDir
	}
	if c.Paths.StripDir, err = expandPath(c.Paths.StripDir); err != nil {
		return fmt.Errorf("paths.strip_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProbe() {
	c.Probe.FFprobeBinary = strings.TrimSpace(c.Probe.FFprobeBinary)
	if c.Probe.FFprobeBinary == "" || c.Probe.FFprobeBinary == defaultFFprobeBinary {
		if value, ok := os.LookupEnv("HIGHLIGHTER_FFPROBE"); ok && strings.TrimSpace(value) != "" {
			c.Probe.FFprobeBinary = strings.TrimSpace(value)
		}
	}
	if c.Probe.FFprobeBinary == "" {
		c.Probe.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Probe.TimeoutSeconds == 0 {
		c.Probe.TimeoutSeconds = defaultProbeTimeout
	}
}

func (c *Config) normalizeDecode() {
	c.Decode.FFmpegBinary = strings.TrimSpace(c.Decode.FFmpegBinary)
	if c.Decode.FFmpegBinary == "" || c.Decode.FFmpegBinary == defaultFFmpegBinary {
		if value, ok := os.LookupEnv("HIGHLIGHTER_FFMPEG"); ok && strings.TrimSpace(value) != "" {
			c.Decode.FFmpegBinary = strings.TrimSpace(value)
		}
	}
	if c.Decode.FFmpegBinary == "" {
		c.Decode.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Decode.PreviewWidth == 0 {
		c.Decode.PreviewWidth = defaultPreviewWidth
	}
	if c.Decode.AudioSampleRate == 0 {
		c.Decode.AudioSampleRate = defaultAudioSampleRate
	}
	if c.Decode.AudioChannels == 0 {
		c.Decode.AudioChannels = defaultAudioChannels
	}
}

func (c *Config) normalizeStrip() {
	if c.Strip.Frames == 0 {
		c.Strip.Frames = defaultStripFrames
	}
	if c.Strip.ThumbHeight == 0 {
		c.Strip.ThumbHeight = defaultStripHeight
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
