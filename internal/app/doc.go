// Package app wires the prayer clock together: it loads the catalog, builds
// the engine and its publishers, feeds settings from the settings file and
// the display link into it, and serves the health endpoints. It is decoupled
// from any specific entrypoint like a CLI or server.
package app
