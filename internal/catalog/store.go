package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"highlighter/internal/config"
	"highlighter/internal/services"
)

// ErrDuplicate is returned by Add when the source path is already catalogued.
var ErrDuplicate = errors.New("clip already catalogued")

// Store manages clip persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.CatalogPath())
}

// OpenPath opens the catalog at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add catalogues a new clip. The path is made absolute first; adding a path
// twice fails with ErrDuplicate.
func (s *Store) Add(ctx context.Context, sourcePath string) (*Record, error) {
	abs, err := filepath.Abs(strings.TrimSpace(sourcePath))
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	existing, err := s.GetByPath(ctx, abs)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, fmt.Errorf("%w: %s (id %d)", ErrDuplicate, abs, existing.ID)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO clips (source_path, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		abs,
		TitleFromPath(abs),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert clip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a record by identifier. A missing record returns nil, nil.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM clips WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return rec, nil
}

// MustGet fetches a record or fails with services.ErrNotFound.
func (s *Store) MustGet(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "get", fmt.Sprintf("clip %d", id), nil)
	}
	return rec, nil
}

// GetByPath fetches a record by absolute source path. A missing record
// returns nil, nil.
func (s *Store) GetByPath(ctx context.Context, sourcePath string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM clips WHERE source_path = ?`, sourcePath)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clip by path: %w", err)
	}
	return rec, nil
}

// List returns every record ordered by id.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM clips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return out, nil
}

// Update persists every mutable field of rec.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	rec.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE clips
         SET title = ?, duration_seconds = ?, start_trim = ?, end_trim = ?, deleted = ?,
             strip_path = ?, error_message = ?, error_kind = ?, updated_at = ?, verified_at = ?
         WHERE id = ?`,
		rec.Title,
		nullableFloat(rec.Duration, rec.DurationKnown),
		rec.StartTrim,
		rec.EndTrim,
		boolToInt(rec.Deleted),
		nullableString(rec.StripPath),
		nullableString(rec.ErrorMessage),
		nullableString(rec.ErrorKind),
		rec.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(rec.VerifiedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update clip: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.Wrap(services.ErrNotFound, "catalog", "update", fmt.Sprintf("clip %d", rec.ID), nil)
	}
	return nil
}

// Remove deletes a record. It reports whether a row was removed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove clip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Stats tallies records by status.
func (s *Store) Stats(ctx context.Context) (Counts, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Counts{}, err
	}
	var counts Counts
	for _, rec := range records {
		counts.Total++
		switch rec.Status() {
		case "ready":
			counts.Ready++
		case "failed":
			counts.Failed++
		case "deleted":
			counts.Deleted++
		default:
			counts.Pending++
		}
	}
	return counts, nil
}
