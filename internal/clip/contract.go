package clip

import (
	"context"
	"errors"
	"image"
)

// ErrClosed is returned by a Clip after Close and by decode sources after
// they have been replaced or closed.
var ErrClosed = errors.New("clip: closed")

// Bounds is the exact parameter tuple a source pair is built for. A source is
// valid only for the Bounds it was constructed with; any change requires a
// new instance.
type Bounds struct {
	Path      string
	Duration  float64
	StartTrim float64
	EndTrim   float64
	Preview   bool
}

// Start returns the first playable second of the trimmed range.
func (b Bounds) Start() float64 { return b.StartTrim }

// End returns the last playable second of the trimmed range.
func (b Bounds) End() float64 { return b.Duration - b.EndTrim }

// Length returns the playable length of the trimmed range in seconds.
func (b Bounds) Length() float64 { return b.Duration - b.StartTrim - b.EndTrim }

// FrameSource decodes video frames over a trimmed range.
type FrameSource interface {
	// NextFrame returns the next sequential frame, or io.EOF past the range end.
	NextFrame(ctx context.Context) (image.Image, error)
	// FrameAt decodes the frame at offset seconds from the trimmed start.
	FrameAt(ctx context.Context, offset float64) (image.Image, error)
	// ExportScrubbingStrip samples frames across the trimmed range and writes
	// one composite image to StripPath. Abandoned when ctx is cancelled.
	ExportScrubbingStrip(ctx context.Context) error
	StripPath() string
	Close() error
}

// AudioFormat describes the interleaved PCM produced by an AudioSource.
type AudioFormat struct {
	SampleRate int
	Channels   int
}

// AudioSource decodes interleaved float32 PCM over a trimmed range.
type AudioSource interface {
	// ReadSamples fills dst and returns the number of samples written, or
	// io.EOF once the range is exhausted.
	ReadSamples(ctx context.Context, dst []float32) (int, error)
	Format() AudioFormat
	Close() error
}

// SourceFactory constructs decode sources for a Bounds tuple.
type SourceFactory interface {
	NewFrameSource(ctx context.Context, bounds Bounds) (FrameSource, error)
	NewAudioSource(ctx context.Context, bounds Bounds) (AudioSource, error)
}

// DurationProber returns a media file's duration in seconds.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Sources is the live frame/audio pair owned by a Clip. Generation increases
// with every rebuild so holders can tell a stale pair from the current one.
type Sources struct {
	Frames     FrameSource
	Audio      AudioSource
	Generation uint64
	Bounds     Bounds
}

func (s *Sources) close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.Frames != nil {
		errs = append(errs, s.Frames.Close())
	}
	if s.Audio != nil {
		errs = append(errs, s.Audio.Close())
	}
	return errors.Join(errs...)
}
