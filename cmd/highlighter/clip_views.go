package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"highlighter/internal/catalog"
)

type clipView struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	SourcePath   string     `json:"source_path"`
	Status       string     `json:"status"`
	Duration     *float64   `json:"duration_seconds,omitempty"`
	StartTrim    float64    `json:"start_trim"`
	EndTrim      float64    `json:"end_trim"`
	Playable     float64    `json:"playable_seconds"`
	Deleted      bool       `json:"deleted"`
	StripPath    string     `json:"strip_path,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

func newClipView(rec *catalog.Record) clipView {
	view := clipView{
		ID:           rec.ID,
		Title:        rec.Title,
		SourcePath:   rec.SourcePath,
		Status:       rec.Status(),
		StartTrim:    rec.StartTrim,
		EndTrim:      rec.EndTrim,
		Playable:     rec.Playable(),
		Deleted:      rec.Deleted,
		StripPath:    rec.StripPath,
		ErrorKind:    rec.ErrorKind,
		ErrorMessage: rec.ErrorMessage,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		VerifiedAt:   rec.VerifiedAt,
	}
	if rec.DurationKnown {
		d := rec.Duration
		view.Duration = &d
	}
	return view
}

func newClipViews(records []*catalog.Record) []clipView {
	views := make([]clipView, 0, len(records))
	for _, rec := range records {
		views = append(views, newClipView(rec))
	}
	return views
}

func formatSeconds(seconds float64, known bool) string {
	if !known {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
	return d.String()
}

func renderClipList(records []*catalog.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.FormatInt(rec.ID, 10),
			rec.Title,
			rec.Status(),
			formatSeconds(rec.Duration, rec.DurationKnown),
			formatSeconds(rec.Playable(), rec.DurationKnown),
			rec.SourcePath,
		})
	}
	return renderTable([]string{"ID", "Title", "Status", "Duration", "Playable", "Source"}, rows, 0, 3, 4)
}

func printClipDetail(out io.Writer, rec *catalog.Record) {
	fmt.Fprintf(out, "Clip %d: %s\n", rec.ID, rec.Title)
	fmt.Fprintf(out, "  Source:    %s\n", rec.SourcePath)
	fmt.Fprintf(out, "  Status:    %s\n", rec.Status())
	fmt.Fprintf(out, "  Duration:  %s\n", formatSeconds(rec.Duration, rec.DurationKnown))
	fmt.Fprintf(out, "  Trim:      %s start, %s end\n",
		formatSeconds(rec.StartTrim, true), formatSeconds(rec.EndTrim, true))
	fmt.Fprintf(out, "  Playable:  %s\n", formatSeconds(rec.Playable(), rec.DurationKnown))
	fmt.Fprintf(out, "  Deleted:   %s\n", yesNo(rec.Deleted))
	if rec.StripPath != "" {
		fmt.Fprintf(out, "  Strip:     %s\n", rec.StripPath)
	}
	if rec.VerifiedAt != nil {
		fmt.Fprintf(out, "  Verified:  %s\n", rec.VerifiedAt.Local().Format(time.DateTime))
	}
	if msg := strings.TrimSpace(rec.ErrorMessage); msg != "" {
		fmt.Fprintf(out, "  Error:     [%s] %s\n", rec.ErrorKind, msg)
	}
}
