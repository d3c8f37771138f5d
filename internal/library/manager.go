package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"highlighter/internal/catalog"
	"highlighter/internal/clip"
	"highlighter/internal/config"
	"highlighter/internal/logging"
	"highlighter/internal/media/ffprobe"
	"highlighter/internal/preview"
	"highlighter/internal/services"
)

// Option configures a Manager.
type Option func(*Manager)

// WithSourceFactory replaces the ffmpeg-backed decoders.
func WithSourceFactory(f clip.SourceFactory) Option {
	return func(m *Manager) {
		if f != nil {
			m.factory = f
		}
	}
}

// WithProber replaces the ffprobe duration prober.
func WithProber(p clip.DurationProber) Option {
	return func(m *Manager) {
		if p != nil {
			m.prober = p
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager runs clip lifecycle operations against catalogued records.
type Manager struct {
	cfg     *config.Config
	store   *catalog.Store
	factory clip.SourceFactory
	prober  clip.DurationProber
	logger  *slog.Logger
}

// New returns a Manager backed by store.
func New(cfg *config.Config, store *catalog.Store, opts ...Option) *Manager {
	m := &Manager{
		cfg:   cfg,
		store: store,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "library")
	if m.factory == nil {
		m.factory = NewSourceFactory(cfg, m.logger)
	}
	if m.prober == nil {
		m.prober = ffprobe.NewProber(cfg.FFprobeBinary(), cfg.ProbeTimeout())
	}
	return m
}

// Store exposes the backing catalog.
func (m *Manager) Store() *catalog.Store { return m.store }

// Open builds a Clip for rec. The caller owns the clip and must Close it.
func (m *Manager) Open(rec *catalog.Record) *clip.Clip {
	opts := []clip.Option{
		clip.WithProber(m.prober),
		clip.WithSourceFactory(m.factory),
		clip.WithLogger(m.logger),
		clip.WithTrim(rec.StartTrim, rec.EndTrim),
	}
	if rec.DurationKnown {
		opts = append(opts, clip.WithDuration(rec.Duration))
	}
	return clip.New(rec.SourcePath, opts...)
}

// Import catalogues path and initializes it. The record is kept even when
// initialization fails; the failure is stored on it and returned.
func (m *Manager) Import(ctx context.Context, path string) (*catalog.Record, error) {
	rec, err := m.store.Add(ctx, path)
	if err != nil {
		return rec, err
	}
	logging.WithContext(ctx, m.logger).Info("clip imported",
		logging.Int("id", int(rec.ID)),
		logging.String(logging.FieldClipPath, rec.SourcePath),
	)
	return m.initRecord(ctx, rec)
}

// Init initializes a catalogued clip: existence check, probe when the
// duration is unknown, decoder construction, strip export.
func (m *Manager) Init(ctx context.Context, id int64) (*catalog.Record, error) {
	rec, err := m.store.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.initRecord(ctx, rec)
}

// Reprobe discards the stored duration, probes the file again and
// reinitializes the clip. Trims that no longer fit the new duration fail
// validation and are reported on the record.
func (m *Manager) Reprobe(ctx context.Context, id int64) (*catalog.Record, error) {
	rec, err := m.store.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.StripPath = ""
	return m.runInit(ctx, rec, true)
}

func (m *Manager) initRecord(ctx context.Context, rec *catalog.Record) (*catalog.Record, error) {
	return m.runInit(ctx, rec, false)
}

func (m *Manager) runInit(ctx context.Context, rec *catalog.Record, reprobe bool) (*catalog.Record, error) {
	c := m.Open(rec)
	defer c.Close()
	if reprobe {
		c.Invalidate()
		rec.DurationKnown = false
		rec.Duration = 0
	}

	opErr := c.Init(ctx)
	if opErr == nil && !c.Deleted() {
		if srcs, ok := c.Sources(); ok {
			rec.StripPath = srcs.Frames.StripPath()
		}
	}
	return rec, m.persist(ctx, rec, c, opErr)
}

// Trim validates and stores new trims, then initializes the clip again so a
// strip for the new range exists. Trims that only fail once the duration has
// been probed are rolled back on the record.
func (m *Manager) Trim(ctx context.Context, id int64, start, end float64) (*catalog.Record, error) {
	rec, err := m.store.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := clip.ValidateTrim(start, end, rec.Duration, rec.DurationKnown); err != nil {
		return rec, err
	}
	prev := *rec
	rec.StartTrim = start
	rec.EndTrim = end
	rec.StripPath = ""
	rec, err = m.initRecord(ctx, rec)
	if errors.Is(err, services.ErrValidation) {
		return rec, m.restoreTrims(ctx, rec, &prev, err)
	}
	return rec, err
}

// restoreTrims puts back the trims, strip and error state a rejected Trim
// replaced. The probed duration is kept.
func (m *Manager) restoreTrims(ctx context.Context, rec, prev *catalog.Record, opErr error) error {
	rec.StartTrim = prev.StartTrim
	rec.EndTrim = prev.EndTrim
	rec.StripPath = prev.StripPath
	rec.ErrorMessage = prev.ErrorMessage
	rec.ErrorKind = prev.ErrorKind
	if err := m.store.Update(context.WithoutCancel(ctx), rec); err != nil {
		return errors.Join(opErr, err)
	}
	return opErr
}

// Reset re-verifies the file and rebuilds the decoders for the stored trims.
// The strip is left untouched.
func (m *Manager) Reset(ctx context.Context, id int64, preview bool) (*catalog.Record, error) {
	rec, err := m.store.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	c := m.Open(rec)
	defer c.Close()

	opErr := c.Reset(ctx, preview)
	if opErr == nil && !c.Deleted() {
		if srcs, ok := c.Sources(); ok {
			logging.WithContext(ctx, m.logger).Info("decoders rebuilt",
				logging.String(logging.FieldClipPath, rec.SourcePath),
				logging.Uint64(logging.FieldGeneration, srcs.Generation),
				logging.Bool("preview", preview),
			)
		}
	}
	return rec, m.persist(ctx, rec, c, opErr)
}

// Verify re-runs the existence check for one clip.
func (m *Manager) Verify(ctx context.Context, id int64) (*catalog.Record, error) {
	rec, err := m.store.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, m.verifyRecord(ctx, rec)
}

// VerifyAll re-runs the existence check for every catalogued clip. Records
// whose check fails keep their previous state; the errors are joined.
func (m *Manager) VerifyAll(ctx context.Context) ([]*catalog.Record, error) {
	records, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if err := m.verifyRecord(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("clip %d: %w", rec.ID, err))
		}
	}
	return records, errors.Join(errs...)
}

func (m *Manager) verifyRecord(ctx context.Context, rec *catalog.Record) error {
	c := m.Open(rec)
	defer c.Close()

	wasDeleted := rec.Deleted
	deleted, err := c.Verify(ctx)
	if err != nil {
		return err
	}
	rec.Deleted = deleted
	now := time.Now().UTC()
	rec.VerifiedAt = &now
	if wasDeleted != deleted {
		logging.WithContext(ctx, m.logger).Info("clip availability changed",
			logging.String(logging.FieldClipPath, rec.SourcePath),
			logging.Bool("deleted", deleted),
		)
	}
	return m.store.Update(ctx, rec)
}

// Remove drops a clip from the catalog and, when purgeStrip is set, deletes
// its strip artifact. The source file is never touched.
func (m *Manager) Remove(ctx context.Context, id int64, purgeStrip bool) (*catalog.Record, error) {
	rec, err := m.store.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := m.store.Remove(ctx, id); err != nil {
		return rec, err
	}
	if purgeStrip && rec.StripPath != "" {
		if err := os.Remove(rec.StripPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return rec, fmt.Errorf("remove strip: %w", err)
		}
		_ = os.Remove(rec.StripPath + ".lock")
	}
	logging.WithContext(ctx, m.logger).Info("clip removed",
		logging.Int("id", int(id)),
		logging.Bool("strip_purged", purgeStrip),
	)
	return rec, nil
}

// staleLockAge is how old an unheld strip lock must be before PruneStrips
// removes it.
const staleLockAge = time.Hour

// PruneStrips deletes strip files that no catalogued clip references, such as
// strips left behind by earlier trims.
func (m *Manager) PruneStrips(ctx context.Context) (preview.PruneResult, error) {
	records, err := m.store.List(ctx)
	if err != nil {
		return preview.PruneResult{}, err
	}
	keep := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.StripPath != "" {
			keep[rec.StripPath] = struct{}{}
		}
	}
	result := preview.Prune(ctx, m.cfg.Paths.StripDir, keep, staleLockAge, m.logger)
	logging.WithContext(ctx, m.logger).Info("strip cleanup finished",
		logging.Int("removed", len(result.Removed)),
		logging.Int("errors", len(result.Errors)),
	)
	return result, ctx.Err()
}

// persist copies the clip's outcome onto rec and stores it. opErr is returned
// unchanged unless the store write itself fails.
func (m *Manager) persist(ctx context.Context, rec *catalog.Record, c *clip.Clip, opErr error) error {
	if d, ok := c.Duration(); ok {
		rec.Duration = d
		rec.DurationKnown = true
	}
	rec.Deleted = c.Deleted()
	now := time.Now().UTC()
	rec.VerifiedAt = &now
	if opErr != nil {
		rec.ErrorMessage = opErr.Error()
		rec.ErrorKind = services.Kind(opErr)
		logging.WithContext(ctx, m.logger).Warn("clip operation failed",
			logging.String(logging.FieldClipPath, rec.SourcePath),
			logging.String(logging.FieldErrorKind, rec.ErrorKind),
			logging.Error(opErr),
		)
	} else {
		rec.ErrorMessage = ""
		rec.ErrorKind = ""
	}

	// A background context keeps the outcome when the caller was cancelled.
	writeCtx := ctx
	if ctx.Err() != nil {
		writeCtx = context.WithoutCancel(ctx)
	}
	if err := m.store.Update(writeCtx, rec); err != nil {
		if opErr != nil {
			return errors.Join(opErr, err)
		}
		return err
	}
	return opErr
}
