// Package main hosts the highlighter CLI.
//
// Commands catalogue source files, adjust trims, rebuild decoders, and report
// availability. Each invocation loads configuration once, opens the catalog,
// runs a single lifecycle operation through internal/library, and closes
// everything before exiting.
package main
