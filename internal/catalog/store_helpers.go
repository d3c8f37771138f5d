package catalog

import (
	"database/sql"
	"errors"
	"time"
)

const recordColumns = "id, source_path, title, duration_seconds, start_trim, end_trim, deleted, strip_path, error_message, error_kind, created_at, updated_at, verified_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		sourcePath   string
		title        string
		duration     sql.NullFloat64
		startTrim    float64
		endTrim      float64
		deleted      int64
		stripPath    sql.NullString
		errorMessage sql.NullString
		errorKind    sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		verifiedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&title,
		&duration,
		&startTrim,
		&endTrim,
		&deleted,
		&stripPath,
		&errorMessage,
		&errorKind,
		&createdRaw,
		&updatedRaw,
		&verifiedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:            id,
		SourcePath:    sourcePath,
		Title:         title,
		Duration:      duration.Float64,
		DurationKnown: duration.Valid,
		StartTrim:     startTrim,
		EndTrim:       endTrim,
		Deleted:       deleted != 0,
		StripPath:     stripPath.String,
		ErrorMessage:  errorMessage.String,
		ErrorKind:     errorKind.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		rec.UpdatedAt = updated
	}
	if verifiedRaw.Valid {
		if verified, err := parseTimeString(verifiedRaw.String); err == nil {
			rec.VerifiedAt = &verified
		}
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value float64, valid bool) any {
	if !valid {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
