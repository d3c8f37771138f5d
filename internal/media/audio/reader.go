package audio

import (
	"context"
	"encoding/binary"
	"errors"
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
	"highlighter/internal/services"
)

// Options carries the decoder settings a Reader needs.
type Options struct {
	FFprobeBinary string
	FFmpegBinary  string
	SampleRate    int
	Channels      int
	Logger        *slog.Logger
}

// OptionsFromConfig builds reader options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		FFprobeBinary: cfg.FFprobeBinary(),
		FFmpegBinary:  cfg.FFmpegBinary(),
		SampleRate:    cfg.Decode.AudioSampleRate,
		Channels:      cfg.Decode.AudioChannels,
		Logger:        logger,
	}
}

// Reader decodes PCM for a single Bounds tuple.
type Reader struct {
	bounds    clip.Bounds
	opts      Options
	format    clip.AudioFormat
	selection Selection

	lifetime context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	closed    bool
	stream    *ffmpeg.Stream
	remaining int64 // silent readers only
	buf       []byte
}

var _ clip.AudioSource = (*Reader)(nil)

// Open inspects bounds.Path and returns a Reader for its primary audio
// stream, or a silent Reader when the file has none.
func Open(ctx context.Context, bounds clip.Bounds, opts Options) (*Reader, error) {
	if opts.SampleRate <= 0 || opts.Channels <= 0 {
		return nil, services.Wrap(services.ErrResourceConstruction, "audio", "open",
			"sample rate and channel count must be positive", nil)
	}
	result, err := ffprobe.Inspect(ctx, opts.FFprobeBinary, bounds.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrResourceConstruction, "audio", "inspect", bounds.Path, err)
	}

	selection := Select(result.Streams)
	lifetime, cancel := context.WithCancel(context.Background())
	r := &Reader{
		bounds:    bounds,
		opts:      opts,
		format:    clip.AudioFormat{SampleRate: opts.SampleRate, Channels: opts.Channels},
		selection: selection,
		lifetime:  lifetime,
		cancel:    cancel,
	}
	if selection.Silent() {
		frames := int64(math.Round(bounds.Length() * float64(opts.SampleRate)))
		r.remaining = max(frames, 0) * int64(opts.Channels)
	}

	logging.NewComponentLogger(opts.Logger, "audio").Debug("audio reader opened",
		logging.String(logging.FieldClipPath, bounds.Path),
		logging.String("stream", selection.PrimaryLabel()),
		logging.Int("candidates", selection.Candidates),
	)
	return r, nil
}

// Selection returns the stream chosen at construction.
func (r *Reader) Selection() Selection { return r.selection }

// Format returns the interleaved PCM layout produced by ReadSamples.
func (r *Reader) Format() clip.AudioFormat { return r.format }

// ReadSamples fills dst with interleaved float32 samples and returns how many
// were written. io.EOF marks the end of the trimmed range.
func (r *Reader) ReadSamples(ctx context.Context, dst []float32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.lifetime.Err() != nil {
		return 0, clip.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(dst) == 0 {
		return 0, nil
	}
	if r.selection.Silent() {
		return r.readSilence(dst)
	}

	if r.stream == nil {
		stream, err := ffmpeg.Start(r.lifetime, r.opts.FFmpegBinary, r.decodeArgs())
		if err != nil {
			return 0, err
		}
		r.stream = stream
	}

	// Read whole sample frames so channels stay aligned across calls.
	frameSize := 4 * r.format.Channels
	n := len(dst) / r.format.Channels * r.format.Channels
	if n == 0 {
		n = len(dst)
		frameSize = 4
	}
	if cap(r.buf) < frameSize {
		r.buf = make([]byte, frameSize)
	}
	chunk := r.buf[:frameSize]
	written := 0
	for written+frameSize/4 <= n {
		if err := r.stream.ReadFull(chunk); err != nil {
			if r.lifetime.Err() != nil {
				return written, clip.ErrClosed
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if written > 0 {
					return written, nil
				}
				return 0, io.EOF
			}
			return written, err
		}
		for i := 0; i < frameSize; i += 4 {
			dst[written] = math.Float32frombits(binary.LittleEndian.Uint32(chunk[i:]))
			written++
		}
	}
	return written, nil
}

func (r *Reader) readSilence(dst []float32) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	n := min(int64(len(dst)), r.remaining)
	clear(dst[:n])
	r.remaining -= n
	return int(n), nil
}

// Close stops the decoder. Later calls return clip.ErrClosed.
func (r *Reader) Close() error {
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

func (r *Reader) decodeArgs() []string {
	return []string{
		"-v", "error", "-nostdin",
		"-ss", ffmpeg.Seconds(r.bounds.Start()),
		"-t", ffmpeg.Seconds(r.bounds.Length()),
		"-i", r.bounds.Path,
		"-map", "0:" + strconv.Itoa(r.selection.PrimaryIndex),
		"-vn",
		"-f", "f32le",
		"-ac", strconv.Itoa(r.format.Channels),
		"-ar", strconv.Itoa(r.format.SampleRate),
		"-",
	}
}
