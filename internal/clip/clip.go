package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"highlighter/internal/logging"
	"highlighter/internal/media/ffprobe"
	"highlighter/internal/services"
)

// Option configures a Clip at construction.
type Option func(*Clip)

// WithProber overrides the duration prober. Defaults to ffprobe on PATH.
func WithProber(p DurationProber) Option {
	return func(c *Clip) {
		if p != nil {
			c.prober = p
		}
	}
}

// WithSourceFactory sets the factory used to build the frame/audio pair.
func WithSourceFactory(f SourceFactory) Option {
	return func(c *Clip) { c.factory = f }
}

// WithAccessCheck overrides the read-access probe used by Verify.
func WithAccessCheck(fn AccessFunc) Option {
	return func(c *Clip) {
		if fn != nil {
			c.access = fn
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clip) { c.logger = logger }
}

// WithDuration seeds a duration known from an earlier probe. It is trusted
// exactly like a probed value. Non-finite or negative values are ignored.
func WithDuration(seconds float64) Option {
	return func(c *Clip) {
		if !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds > 0 {
			c.duration = seconds
			c.hasDuration = true
		}
	}
}

// WithTrim seeds trim bounds. They are validated before the first source
// construction.
func WithTrim(start, end float64) Option {
	return func(c *Clip) {
		c.startTrim = start
		c.endTrim = end
	}
}

// Clip is one imported media file and its disposable decode resources.
type Clip struct {
	path    string
	prober  DurationProber
	factory SourceFactory
	access  AccessFunc
	logger  *slog.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	// work serializes source construction and strip export.
	work sync.Mutex

	mu          sync.Mutex
	init        *initCell
	epoch       uint64
	duration    float64
	hasDuration bool
	startTrim   float64
	endTrim     float64
	deleted     bool
	resetting   bool
	sources     *Sources
	generation  uint64
	lastErr     error
	closed      bool
}

// New returns an uninitialized Clip for path. Nothing touches the filesystem
// until Init, Reset or Verify is called.
func New(path string, opts ...Option) *Clip {
	c := &Clip{
		path:   path,
		prober: ffprobe.NewProber("ffprobe", ffprobe.DefaultTimeout),
		access: readAccess,
		init:   newInitCell(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "clip").With(logging.String(logging.FieldClipPath, path))
	c.lifetime, c.cancel = context.WithCancel(context.Background())
	return c
}

// SourcePath returns the clip's identity.
func (c *Clip) SourcePath() string { return c.path }

// Duration returns the known duration in seconds.
func (c *Clip) Duration() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration, c.hasDuration
}

// Trim returns the current trim bounds.
func (c *Clip) Trim() (start, end float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startTrim, c.endTrim
}

// Deleted reports whether the last existence check found the file missing
// or unreadable.
func (c *Clip) Deleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted
}

// LastError returns the error of the most recent Init or Reset, if any.
func (c *Clip) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Sources returns the live frame/audio pair. ok is false when no pair exists,
// the clip is deleted, or the clip is closed.
func (c *Clip) Sources() (Sources, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sources == nil || c.deleted || c.closed {
		return Sources{}, false
	}
	return *c.sources, true
}

// State reports the clip's lifecycle phase.
func (c *Clip) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	started, settled, _ := c.init.status()
	inFlight := started && !settled
	switch {
	case c.closed:
		return StateClosed
	case inFlight:
		return StateInitializing
	case c.resetting:
		return StateResetting
	case c.deleted:
		return StateDeleted
	case c.lastErr != nil:
		return StateFailed
	case c.sources != nil:
		return StateReady
	default:
		return StateUninitialized
	}
}

// SetTrim validates and stores new trim bounds. The live source pair keeps
// its old bounds until the next Reset.
func (c *Clip) SetTrim(start, end float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := ValidateTrim(start, end, c.duration, c.hasDuration); err != nil {
		return err
	}
	c.startTrim = start
	c.endTrim = end
	return nil
}

// ValidateTrim enforces 0 <= start, 0 <= end and, when the duration is known,
// start+end < duration.
func ValidateTrim(start, end, duration float64, durationKnown bool) error {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return services.Wrap(services.ErrValidation, "clip", "trim", "trim bounds must be finite", nil)
	}
	if start < 0 || end < 0 {
		return services.Wrap(services.ErrValidation, "clip", "trim",
			fmt.Sprintf("trim bounds must not be negative (start=%g end=%g)", start, end), nil)
	}
	if durationKnown && start+end >= duration {
		return services.Wrap(services.ErrValidation, "clip", "trim",
			fmt.Sprintf("trims %g+%g leave nothing of %gs clip", start, end, duration), nil)
	}
	return nil
}

// Init performs the one-time setup and returns its memoized outcome. The
// first call starts the work; every caller, concurrent or later, observes the
// same result. A missing file is success with Deleted() == true. The work runs
// on the clip's own lifetime, so cancelling ctx only stops this caller from
// waiting. A ctx that is already done returns its error without starting
// anything.
func (c *Clip) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	cell := c.init
	c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	done := cell.start(c.runInit)
	select {
	case <-done:
		return cell.result()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Clip) runInit() error {
	ctx := services.WithClipPath(c.lifetime, c.path)
	c.work.Lock()
	defer c.work.Unlock()

	c.logger.Debug("clip init started")
	err := c.initLocked(ctx)
	c.recordResult(err)
	if err != nil {
		c.logger.Warn("clip init failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
		)
		return err
	}
	return nil
}

func (c *Clip) initLocked(ctx context.Context) error {
	if err := c.rebuildLocked(ctx, false); err != nil {
		return err
	}
	if c.Deleted() {
		c.logger.Info("source missing, clip marked deleted")
		return nil
	}

	c.mu.Lock()
	srcs := c.sources
	c.mu.Unlock()
	if err := srcs.Frames.ExportScrubbingStrip(ctx); err != nil {
		if !errors.Is(err, services.ErrStripGeneration) {
			err = services.Wrap(services.ErrStripGeneration, "clip", "init", "export scrubbing strip", err)
		}
		return err
	}
	c.logger.Info("clip ready",
		logging.String("strip_path", srcs.Frames.StripPath()),
		logging.Uint64(logging.FieldGeneration, srcs.Generation),
	)
	return nil
}

// Reset re-verifies the source file and rebuilds the frame/audio pair with
// the current trims and the given preview flag. The strip is never
// regenerated. Calls are serialized per clip; failures are returned directly
// and not memoized.
func (c *Clip) Reset(ctx context.Context, preview bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	ctx, stop := c.joinLifetime(ctx)
	defer stop()
	ctx = services.WithClipPath(ctx, c.path)

	c.work.Lock()
	defer c.work.Unlock()

	err := c.rebuildLocked(ctx, preview)
	c.recordResult(err)
	if err != nil {
		c.logger.Warn("clip reset failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
		)
	}
	return err
}

// Verify re-runs the existence check and updates Deleted. Only unexpected
// access failures are returned as errors.
func (c *Clip) Verify(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deleted, err := classifyAccess(c.path, c.access(c.path))
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	changed := c.deleted != deleted
	c.deleted = deleted
	c.mu.Unlock()
	if changed {
		c.logger.Info("source availability changed", logging.Bool("deleted", deleted))
	}
	return deleted, nil
}

// Invalidate forgets the memoized Init outcome and the known duration so the
// next Init starts over with a fresh probe. Callers already waiting on an
// in-flight Init still receive that attempt's outcome.
func (c *Clip) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init = newInitCell()
	c.epoch++
	c.duration = 0
	c.hasDuration = false
	c.lastErr = nil
}

// Close tears the clip down: in-flight probes and strip exports are
// abandoned, the source pair is closed, and further Init/Reset calls return
// ErrClosed. Close is idempotent.
func (c *Clip) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.work.Lock()
	defer c.work.Unlock()
	return c.swapSources(nil)
}

// rebuildLocked runs existence check, probe and construction. c.work must be held.
func (c *Clip) rebuildLocked(ctx context.Context, preview bool) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	deleted, err := c.Verify(ctx)
	if err != nil {
		return err
	}
	if deleted {
		return c.swapSources(nil)
	}

	duration, err := c.ensureDuration(ctx)
	if err != nil {
		return err
	}

	bounds, err := c.bounds(duration, preview)
	if err != nil {
		return err
	}

	c.setResetting(true)
	defer c.setResetting(false)

	next, err := c.construct(ctx, bounds)
	if err != nil {
		// The old pair was built for stale bounds; it goes too.
		if closeErr := c.swapSources(nil); closeErr != nil {
			c.logger.Debug("close previous sources", logging.Error(closeErr))
		}
		return err
	}
	if err := c.swapSources(next); err != nil {
		c.logger.Debug("close previous sources", logging.Error(err))
	}
	c.logger.Debug("sources rebuilt",
		logging.Uint64(logging.FieldGeneration, next.Generation),
		logging.Bool("preview", preview),
	)
	return nil
}

// ensureDuration returns the known duration, probing when there is none. A
// probe that finishes after Invalidate is used for the current attempt only.
func (c *Clip) ensureDuration(ctx context.Context) (float64, error) {
	c.mu.Lock()
	known, seconds, epoch := c.hasDuration, c.duration, c.epoch
	c.mu.Unlock()
	if known {
		return seconds, nil
	}

	seconds, err := c.prober.ProbeDuration(ctx, c.path)
	if err != nil {
		if !errors.Is(err, services.ErrProbeFailed) {
			err = services.Wrap(services.ErrProbeFailed, "clip", "probe duration", "", err)
		}
		return 0, err
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, services.Wrap(services.ErrProbeFailed, "clip", "probe duration",
			fmt.Sprintf("unusable duration %v", seconds), nil)
	}

	c.mu.Lock()
	stale := c.epoch != epoch
	if !stale {
		c.duration = seconds
		c.hasDuration = true
	}
	c.mu.Unlock()
	if stale {
		c.logger.Debug("probe finished after invalidation, result not kept",
			logging.Float64("duration_seconds", seconds))
		return seconds, nil
	}
	c.logger.Info("duration probed", logging.Float64("duration_seconds", seconds))
	return seconds, nil
}

func (c *Clip) bounds(duration float64, preview bool) (Bounds, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ValidateTrim(c.startTrim, c.endTrim, duration, true); err != nil {
		return Bounds{}, err
	}
	return Bounds{
		Path:      c.path,
		Duration:  duration,
		StartTrim: c.startTrim,
		EndTrim:   c.endTrim,
		Preview:   preview,
	}, nil
}

// construct builds a complete pair or nothing; partial results are closed.
func (c *Clip) construct(ctx context.Context, bounds Bounds) (next *Sources, err error) {
	if c.factory == nil {
		return nil, services.Wrap(services.ErrResourceConstruction, "clip", "construct sources", "no source factory configured", nil)
	}

	var frames FrameSource
	var audio AudioSource
	defer func() {
		if err == nil {
			return
		}
		if frames != nil {
			_ = frames.Close()
		}
		if audio != nil {
			_ = audio.Close()
		}
	}()

	frames, err = c.factory.NewFrameSource(ctx, bounds)
	if err != nil {
		return nil, constructionError("frame source", err)
	}
	audio, err = c.factory.NewAudioSource(ctx, bounds)
	if err != nil {
		return nil, constructionError("audio source", err)
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()
	return &Sources{Frames: frames, Audio: audio, Generation: gen, Bounds: bounds}, nil
}

func constructionError(what string, err error) error {
	if errors.Is(err, services.ErrResourceConstruction) {
		return err
	}
	return services.Wrap(services.ErrResourceConstruction, "clip", "construct "+what, "", err)
}

// swapSources installs next and closes whatever it replaced.
func (c *Clip) swapSources(next *Sources) error {
	c.mu.Lock()
	prev := c.sources
	c.sources = next
	c.mu.Unlock()
	return prev.close()
}

func (c *Clip) setResetting(v bool) {
	c.mu.Lock()
	c.resetting = v
	c.mu.Unlock()
}

func (c *Clip) recordResult(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// joinLifetime derives a context cancelled by either ctx or the clip's Close.
func (c *Clip) joinLifetime(ctx context.Context) (context.Context, func()) {
	joined, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	return joined, func() {
		stop()
		cancel()
	}
}
