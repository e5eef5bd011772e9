package errorsx

// Class groups reason codes into the failure taxonomy used by log lines
// and the notify driver's degrade decisions.
type Class string

const (
	ClassUnknown  Class = "unknown"
	ClassConfig   Class = "config"
	ClassAdapter  Class = "adapter"
	ClassProvider Class = "provider"
	ClassCache    Class = "cache"
	ClassPlayback Class = "playback"
)

// ClassOf maps an error's reason code to its taxonomy class.
func ClassOf(err error) Class {
	switch Reason(err) {
	case ReasonConfigLoad, ReasonConfigValidate:
		return ClassConfig
	case ReasonAdapterParse:
		return ClassAdapter
	case ReasonProviderSynth, ReasonProviderTimeout, ReasonProviderRateLimit:
		return ClassProvider
	case ReasonCacheWrite:
		return ClassCache
	case ReasonPlayback, ReasonVoicePack:
		return ClassPlayback
	default:
		return ClassUnknown
	}
}
