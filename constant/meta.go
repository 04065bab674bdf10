// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Lockstep is the canonical application identifier used for filesystem paths and CLI branding.
	Lockstep = "lockstep"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for release lookups.
	UserAgent = Lockstep + "/" + Version
)
