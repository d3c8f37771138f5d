// Package preflight provides readiness checks for the directories and external
// tools highlighter depends on.
//
// The CLI "highlighter status" command renders these results. Clip
// operations do not run them; a missing ffprobe surfaces as a probe failure
// on the clip itself.
package preflight
