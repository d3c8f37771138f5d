package library

import (
	"context"
	"log/slog"

	"highlighter/internal/clip"
	"highlighter/internal/config"
	"highlighter/internal/media/audio"
	"highlighter/internal/media/frames"
)

// SourceFactory builds ffmpeg-backed frame and audio readers.
type SourceFactory struct {
	Frames frames.Options
	Audio  audio.Options
}

var _ clip.SourceFactory = SourceFactory{}

// NewSourceFactory derives reader options from cfg.
func NewSourceFactory(cfg *config.Config, logger *slog.Logger) SourceFactory {
	return SourceFactory{
		Frames: frames.OptionsFromConfig(cfg, logger),
		Audio:  audio.OptionsFromConfig(cfg, logger),
	}
}

// NewFrameSource implements clip.SourceFactory.
func (f SourceFactory) NewFrameSource(ctx context.Context, bounds clip.Bounds) (clip.FrameSource, error) {
	r, err := frames.Open(ctx, bounds, f.Frames)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewAudioSource implements clip.SourceFactory.
func (f SourceFactory) NewAudioSource(ctx context.Context, bounds clip.Bounds) (clip.AudioSource, error) {
	r, err := audio.Open(ctx, bounds, f.Audio)
	if err != nil {
		return nil, err
	}
	return r, nil
}
