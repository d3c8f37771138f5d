// Package catalog persists imported clips in SQLite.
//
// A Record is the durable side of a clip: its source path, the duration once
// probed, trims, the deleted flag from the last existence check, the strip
// path, and the last failure (message and kind). The library package is the
// only writer during clip operations; the CLI reads records for display.
//
// Schema changes bump schemaVersion in schema.go; the catalog refuses to open
// a database written with a different version.
package catalog
