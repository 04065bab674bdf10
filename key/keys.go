// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 12

// Playback Timing - these keys tune the pacing loops shared by every stream worker.
const (
	PlayTickIntervalMs = "play.tick_interval_ms"
	PlayNapMarginMs    = "play.nap_margin_ms"
	PlayAudioChunks    = "play.audio_chunks_per_second"
)

// Synchronization - these keys govern the cross-stream start-delay compensation.
const (
	SyncDelayHistory = "sync.delay_history"
	SyncDelaySeed    = "sync.delay_seed"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the command line application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Probe Output - these keys shape the media inspection report.
const (
	ProbeShowChannels = "probe.show_channels"
)
