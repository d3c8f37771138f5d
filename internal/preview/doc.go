// Package preview owns the scrubbing strip artifact: where it lives, how
// sampled frames are composed into it, and the cross-process lock that keeps
// two invocations from generating the same strip at once.
//
// A strip is identified by the absolute source path and the trim bounds it
// was sampled over, so a strip that already exists for the same identity is
// never regenerated.
package preview
