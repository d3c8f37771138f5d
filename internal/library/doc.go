// Package library connects catalogued records to live clips.
//
// Each operation rebuilds a clip.Clip from its record (seeding the known
// duration and trims), runs one lifecycle step, and writes the outcome back:
// duration, deleted flag, strip path, and the failure kind and message. The
// clip is closed before the operation returns, so no decode process outlives
// a command.
package library
