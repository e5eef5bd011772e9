package synth

// BackendInfo describes one registered backend for the models command.
type BackendInfo struct {
	Name             string `json:"name"`
	Available        bool   `json:"available"`
	SupportsInstruct bool   `json:"supports_instruct"`
}

// ModelsInfo is the models command payload.
type ModelsInfo struct {
	Backends     []BackendInfo `json:"backends"`
	CacheDir     string        `json:"cache_dir,omitempty"`
	CacheEntries int           `json:"cache_entries"`
	CacheBytes   int64         `json:"cache_bytes"`
}

// Describe inspects a backend for the models listing.
func Describe(b Backend) BackendInfo {
	available := true
	if reporter, ok := b.(AvailabilityReporter); ok {
		available = reporter.Available()
	}
	return BackendInfo{
		Name:             b.Name(),
		Available:        available,
		SupportsInstruct: b.SupportsInstruct(),
	}
}
