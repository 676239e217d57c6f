package config

// Git defaults.
const (
	DefaultGitBinary    = "git"
	DefaultGitWaitDelay = "5s"
)

// Stage defaults.
const (
	DefaultStageBackend       = BackendPatch
	DefaultStageTerminator    = "q"
	DefaultStageVerifyPrompts = true
	DefaultStageCrossCheck    = true
	DefaultStageContextLines  = 0
	DefaultStageMaxDiffSize   = "64MB"
)

// Logging defaults.
const (
	DefaultLoggingLevel = "warn"
	DefaultLoggingJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetrySampleRatio = 0.0
	DefaultTelemetryMetricsDump = false
)
