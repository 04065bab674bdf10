package constant

// Build metadata, injected at link time by goreleaser.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
