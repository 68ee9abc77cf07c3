// Package version carries build metadata stamped in by the linker.
package version

// Version is overridden at build time via -ldflags.
var Version = "0.3.0"
