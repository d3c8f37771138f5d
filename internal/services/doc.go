// Package services defines shared utilities consumed by the clip core, the
// catalog and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp clip paths and correlation identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper so failures from probing,
//     decoder construction and strip generation can be classified with
//     errors.Is and persisted as a stable kind string.
package services
