// Package config defines the engine settings model and the ways settings
// reach the engine: an HCL (or HCL-JSON) file, optionally watched for
// changes, and JSON payloads from the display link.
//
// Settings is the raw inbound form. Resolve applies defaults and validates,
// producing the Resolved values the engine runs with. Validation failures
// are reported as *ConfigurationError so callers can tell bad input apart
// from I/O errors.
package config
