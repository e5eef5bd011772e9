// Package broker decides what an event should sound like. Resolution
// is layered: voice-pack phrase when a pack is loaded and has a
// candidate, then the per-event-type configuration (synthesized
// template, earcon, or silence).
package broker

import (
	"math/rand"

	"github.com/harunnryd/chime/pkg/events"
	"github.com/harunnryd/chime/pkg/voicepack"
)

// Mode is the configured rendering mode for an event type.
type Mode string

const (
	ModeTTS    Mode = "tts"
	ModeEarcon Mode = "earcon"
	ModeSilent Mode = "silent"
)

// EventConfig is the per-event-type policy slice of the configuration.
type EventConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	Mode     Mode   `mapstructure:"mode" json:"mode"`
	Template string `mapstructure:"template" json:"template"`
}

// Policy is the broker's read-only view of the configuration.
type Policy struct {
	Events            map[events.Type]EventConfig
	SpokenCharsBudget int
}

// DecisionKind tags the broker's outcome.
type DecisionKind int

const (
	// DecisionSilent means nothing plays.
	DecisionSilent DecisionKind = iota
	// DecisionVoicePack plays a pre-generated phrase file.
	DecisionVoicePack
	// DecisionSynthesize hands text to the provider chain.
	DecisionSynthesize
	// DecisionEarcon plays the bundled clip for the event type.
	DecisionEarcon
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionVoicePack:
		return "voicepack"
	case DecisionSynthesize:
		return "synthesize"
	case DecisionEarcon:
		return "earcon"
	default:
		return "silent"
	}
}

// Decision is the resolved outcome for one event.
type Decision struct {
	Kind DecisionKind
	// PhrasePath is set for DecisionVoicePack.
	PhrasePath string
	// Text is set for DecisionSynthesize.
	Text string
	// EventType is set for DecisionEarcon.
	EventType events.Type
	// Reason explains DecisionSilent outcomes in logs.
	Reason string
}

// Resolve maps an event onto a decision. pack may be nil (voice-pack
// mode disabled or manifest missing); rng drives phrase selection and
// is injected so tests can seed it.
func Resolve(event *events.Event, policy Policy, pack *voicepack.Pack, rng *rand.Rand) Decision {
	if pack != nil {
		if path := pack.SelectPath(event, rng); path != "" {
			return Decision{Kind: DecisionVoicePack, PhrasePath: path}
		}
	}

	cfg, ok := policy.Events[event.Type]
	if !ok {
		return Decision{Kind: DecisionSilent, Reason: "event type not configured"}
	}
	if !cfg.Enabled {
		return Decision{Kind: DecisionSilent, Reason: "event type disabled"}
	}

	switch cfg.Mode {
	case ModeEarcon:
		return Decision{Kind: DecisionEarcon, EventType: event.Type}
	case ModeTTS:
		template := cfg.Template
		if template == "" {
			template = event.Type.DefaultTemplate()
		}
		return Decision{
			Kind: DecisionSynthesize,
			Text: Truncate(template, policy.SpokenCharsBudget),
		}
	default:
		return Decision{Kind: DecisionSilent, Reason: "mode silent"}
	}
}
