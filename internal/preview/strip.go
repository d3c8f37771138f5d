package preview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/image/draw"

	"highlighter/internal/fileutil"
	"highlighter/internal/logging"
	"highlighter/internal/services"
)

const lockRetryDelay = 100 * time.Millisecond

// StripPath returns the deterministic strip location for a source file and
// trim bounds inside dir.
func StripPath(dir, source string, startTrim, endTrim float64) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = filepath.Clean(source)
	}
	h := sha256.New()
	io.WriteString(h, abs)
	io.WriteString(h, "\x00")
	io.WriteString(h, strconv.FormatFloat(startTrim, 'f', 3, 64))
	io.WriteString(h, "\x00")
	io.WriteString(h, strconv.FormatFloat(endTrim, 'f', 3, 64))
	return filepath.Join(dir, hex.EncodeToString(h.Sum(nil))[:16]+".png")
}

// Offsets returns n sample points spread evenly across length seconds, each at
// the centre of its slot so the first and last frames avoid the range edges.
func Offsets(length float64, n int) []float64 {
	if n <= 0 || length <= 0 {
		return nil
	}
	step := length / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = step * (float64(i) + 0.5)
	}
	return out
}

// Compose scales every frame to thumbHeight, preserving aspect ratio, and lays
// them out left to right.
func Compose(frames []image.Image, thumbHeight int) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to compose")
	}
	if thumbHeight <= 0 {
		return nil, fmt.Errorf("invalid thumb height %d", thumbHeight)
	}

	widths := make([]int, len(frames))
	total := 0
	for i, frame := range frames {
		b := frame.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			return nil, fmt.Errorf("frame %d is empty", i)
		}
		w := max(b.Dx()*thumbHeight/b.Dy(), 1)
		widths[i] = w
		total += w
	}

	strip := image.NewRGBA(image.Rect(0, 0, total, thumbHeight))
	x := 0
	for i, frame := range frames {
		dst := image.Rect(x, 0, x+widths[i], thumbHeight)
		draw.CatmullRom.Scale(strip, dst, frame, frame.Bounds(), draw.Over, nil)
		x += widths[i]
	}
	return strip, nil
}

// Sampler decodes the frames for a strip. It is called only when the strip
// does not exist yet.
type Sampler func(ctx context.Context) ([]image.Image, error)

// Generate writes the strip at path unless it already exists. Generation is
// guarded by an exclusive lock file next to the strip so concurrent processes
// sample at most once. It reports whether a new strip was written.
func Generate(ctx context.Context, path string, thumbHeight int, sample Sampler, logger *slog.Logger) (bool, error) {
	logger = logging.NewComponentLogger(logger, "preview")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "prepare strip dir", filepath.Dir(path), err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "acquire strip lock", path, err)
	}
	if !locked {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "acquire strip lock", path, ctx.Err())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("release strip lock", logging.Error(err))
		}
	}()

	if fileutil.Exists(path) {
		logger.Debug("strip already present", logging.String("strip_path", path))
		return false, nil
	}

	started := time.Now()
	frames, err := sample(ctx)
	if err != nil {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "sample frames", "", err)
	}
	img, err := Compose(frames, thumbHeight)
	if err != nil {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "compose strip", "", err)
	}
	if err := ctx.Err(); err != nil {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "write strip", "abandoned", err)
	}
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return false, services.Wrap(services.ErrStripGeneration, "preview", "write strip", path, err)
	}

	logger.Info("strip written",
		logging.String("strip_path", path),
		logging.Int("frames", len(frames)),
		logging.Float64("elapsed_seconds", time.Since(started).Seconds()),
	)
	return true, nil
}
