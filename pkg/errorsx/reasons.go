package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonConfigLoad     ReasonCode = "config_load"
	ReasonConfigValidate ReasonCode = "config_validate"

	ReasonAdapterParse ReasonCode = "adapter_parse"

	ReasonProviderSynth     ReasonCode = "provider_synth"
	ReasonProviderTimeout   ReasonCode = "provider_timeout"
	ReasonProviderRateLimit ReasonCode = "provider_rate_limit"

	ReasonCacheWrite ReasonCode = "cache_write"

	ReasonPlayback  ReasonCode = "playback"
	ReasonVoicePack ReasonCode = "voicepack"
)
