package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"highlighter/internal/clip"
	"highlighter/internal/config"
	"highlighter/internal/logging"
	"highlighter/internal/media/ffmpeg"
	"highlighter/internal/media/ffprobe"
	"highlighter/internal/preview"
	"highlighter/internal/services"
)

// Options carries the decoder and strip settings a Reader needs.
type Options struct {
	FFprobeBinary string
	FFmpegBinary  string
	PreviewWidth  int
	StripDir      string
	StripFrames   int
	ThumbHeight   int
	Logger        *slog.Logger
}

// OptionsFromConfig builds reader options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		FFprobeBinary: cfg.FFprobeBinary(),
		FFmpegBinary:  cfg.FFmpegBinary(),
		PreviewWidth:  cfg.Decode.PreviewWidth,
		StripDir:      cfg.Paths.StripDir,
		StripFrames:   cfg.Strip.Frames,
		ThumbHeight:   cfg.Strip.ThumbHeight,
		Logger:        logger,
	}
}

// Reader decodes video frames for a single Bounds tuple.
type Reader struct {
	bounds    clip.Bounds
	opts      Options
	width     int
	height    int
	stripPath string
	logger    *slog.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	closed bool
	stream *ffmpeg.Stream
}

var _ clip.FrameSource = (*Reader)(nil)

// Open inspects bounds.Path and returns a Reader sized for the first video
// stream. Files without a video stream fail with
// services.ErrResourceConstruction.
func Open(ctx context.Context, bounds clip.Bounds, opts Options) (*Reader, error) {
	result, err := ffprobe.Inspect(ctx, opts.FFprobeBinary, bounds.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrResourceConstruction, "frames", "inspect", bounds.Path, err)
	}
	video, ok := result.FirstVideo()
	if !ok {
		return nil, services.Wrap(services.ErrResourceConstruction, "frames", "inspect", "no video stream", nil)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, services.Wrap(services.ErrResourceConstruction, "frames", "inspect",
			fmt.Sprintf("invalid dimensions %dx%d", video.Width, video.Height), nil)
	}

	width, height := outputSize(video.Width, video.Height, bounds.Preview, opts.PreviewWidth)
	lifetime, cancel := context.WithCancel(context.Background())
	r := &Reader{
		bounds:    bounds,
		opts:      opts,
		width:     width,
		height:    height,
		stripPath: preview.StripPath(opts.StripDir, bounds.Path, bounds.StartTrim, bounds.EndTrim),
		logger: logging.NewComponentLogger(opts.Logger, "frames").With(
			logging.String(logging.FieldClipPath, bounds.Path),
		),
		lifetime: lifetime,
		cancel:   cancel,
	}
	attrs := []logging.Attr{
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Float64("frame_rate", video.FrameRate()),
		logging.Bool("preview", bounds.Preview),
	}
	if d := result.DurationSeconds(); !math.IsNaN(d) && d > 0 {
		attrs = append(attrs, logging.Float64("container_duration_seconds", d))
	}
	r.logger.Debug("frame reader opened", logging.Args(attrs...)...)
	return r, nil
}

// outputSize scales preview output down to previewWidth, keeping both sides
// even for the decoder.
func outputSize(width, height int, preview bool, previewWidth int) (int, int) {
	if !preview || previewWidth <= 0 || width <= previewWidth {
		return width, height
	}
	h := height * previewWidth / width
	if h%2 == 1 {
		h++
	}
	return previewWidth, max(h, 2)
}

// Size returns the dimensions of decoded frames.
func (r *Reader) Size() (int, int) { return r.width, r.height }

// Bounds returns the tuple the reader was built for.
func (r *Reader) Bounds() clip.Bounds { return r.bounds }

// StripPath returns where ExportScrubbingStrip writes.
func (r *Reader) StripPath() string { return r.stripPath }

// NextFrame returns the next frame of the trimmed range, or io.EOF.
func (r *Reader) NextFrame(ctx context.Context) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.lifetime.Err() != nil {
		return nil, clip.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.stream == nil {
		stream, err := ffmpeg.Start(r.lifetime, r.opts.FFmpegBinary, r.sequentialArgs())
		if err != nil {
			return nil, err
		}
		r.stream = stream
	}

	frame := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if err := r.stream.ReadFull(frame.Pix); err != nil {
		if r.lifetime.Err() != nil {
			return nil, clip.ErrClosed
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return frame, nil
}

// FrameAt decodes the frame offset seconds after the trimmed start.
func (r *Reader) FrameAt(ctx context.Context, offset float64) (image.Image, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if offset < 0 || offset > r.bounds.Length() {
		return nil, fmt.Errorf("offset %.3fs outside trimmed range of %.3fs", offset, r.bounds.Length())
	}

	ctx, stop := r.join(ctx)
	defer stop()
	out, err := ffmpeg.Output(ctx, r.opts.FFmpegBinary, r.stillArgs(r.bounds.Start()+offset))
	if err != nil {
		if r.checkOpen() != nil {
			return nil, clip.ErrClosed
		}
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode frame at %.3fs: %w", offset, err)
	}
	return img, nil
}

// ExportScrubbingStrip samples frames evenly over the trimmed range and writes
// the composed strip. An existing strip for the same source and trims is kept.
func (r *Reader) ExportScrubbingStrip(ctx context.Context) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	offsets := preview.Offsets(r.bounds.Length(), r.opts.StripFrames)
	sampler := func(ctx context.Context) ([]image.Image, error) {
		frames := make([]image.Image, 0, len(offsets))
		for _, offset := range offsets {
			img, err := r.FrameAt(ctx, offset)
			if err != nil {
				return nil, err
			}
			frames = append(frames, img)
		}
		return frames, nil
	}
	_, err := preview.Generate(ctx, r.stripPath, r.opts.ThumbHeight, sampler, r.logger)
	return err
}

// Close stops any running decoder. Later calls on the reader return
// clip.ErrClosed.
func (r *Reader) Close() error {
	// Cancel before locking so a NextFrame blocked on the pipe is released.
	r.cancel()
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stream := r.stream
	r.stream = nil
	r.mu.Unlock()

	if stream != nil {
		return stream.Close()
	}
	return nil
}

func (r *Reader) checkOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return clip.ErrClosed
	}
	return nil
}

func (r *Reader) join(ctx context.Context) (context.Context, func()) {
	joined, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.lifetime, cancel)
	return joined, func() {
		stop()
		cancel()
	}
}

func (r *Reader) scaleFilter() string {
	return "scale=" + strconv.Itoa(r.width) + ":" + strconv.Itoa(r.height)
}

func (r *Reader) sequentialArgs() []string {
	return []string{
		"-v", "error", "-nostdin",
		"-ss", ffmpeg.Seconds(r.bounds.Start()),
		"-t", ffmpeg.Seconds(r.bounds.Length()),
		"-i", r.bounds.Path,
		"-map", "0:v:0",
		"-vf", r.scaleFilter(),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}
}

func (r *Reader) stillArgs(at float64) []string {
	return []string{
		"-v", "error", "-nostdin",
		"-ss", ffmpeg.Seconds(at),
		"-i", r.bounds.Path,
		"-map", "0:v:0",
		"-frames:v", "1",
		"-vf", r.scaleFilter(),
		"-f", "image2pipe",
		"-c:v", "png",
		"-",
	}
}
