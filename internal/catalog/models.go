package catalog

import (
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is the persisted state of one imported clip.
type Record struct {
	ID            int64
	SourcePath    string
	Title         string
	Duration      float64
	DurationKnown bool
	StartTrim     float64
	EndTrim       float64
	Deleted       bool
	StripPath     string
	ErrorMessage  string
	ErrorKind     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	VerifiedAt    *time.Time
}

// Playable returns the trimmed length in seconds, or 0 when the duration is
// unknown.
func (r Record) Playable() float64 {
	if !r.DurationKnown {
		return 0
	}
	return max(r.Duration-r.StartTrim-r.EndTrim, 0)
}

// Status summarizes the record for listings.
func (r Record) Status() string {
	switch {
	case r.Deleted:
		return "deleted"
	case r.ErrorKind != "":
		return "failed"
	case r.StripPath != "":
		return "ready"
	default:
		return "pending"
	}
}

// Counts tallies records by status.
type Counts struct {
	Total   int `json:"total"`
	Ready   int `json:"ready"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Deleted int `json:"deleted"`
}

// TitleFromPath derives a display title from a file name: separators become
// spaces and words are title-cased.
func TitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		}
		return r
	}, base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled Clip"
	}
	return cases.Title(language.Und).String(base)
}
