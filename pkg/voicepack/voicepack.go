// Package voicepack selects pre-generated phrase audio instead of
// on-demand synthesis. A manifest maps event types to phrase lists and
// each phrase to one or more recorded variants; routing rules from the
// configuration pick phrases by matching the event summary.
package voicepack

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/events"
)

// Manifest is the on-disk voicepack index.
type Manifest struct {
	Events  map[string][]string `json:"events"`
	Phrases map[string]Phrase   `json:"phrases"`
}

type Phrase struct {
	Text     string    `json:"text,omitempty"`
	Variants []Variant `json:"variants"`
}

type Variant struct {
	File string `json:"file"`
}

// Route is one ordered summary-matching rule. An empty event list means
// the rule applies to every event type.
type Route struct {
	Pattern       string        `mapstructure:"pattern" json:"pattern"`
	Phrases       []string      `mapstructure:"phrases" json:"phrases"`
	Events        []events.Type `mapstructure:"events" json:"events,omitempty"`
	CaseSensitive bool          `mapstructure:"case_sensitive" json:"case_sensitive,omitempty"`
}

type compiledRoute struct {
	events  []events.Type
	regex   *regexp.Regexp
	phrases []string
}

// Pack is a loaded manifest plus compiled routes, rooted at the
// manifest's directory.
type Pack struct {
	root     string
	manifest Manifest
	routes   []compiledRoute
}

// Load reads the manifest and compiles the routing rules. Routes with
// no phrases are skipped; a route with an invalid pattern is a load
// error so misconfiguration surfaces in config --validate.
func Load(manifestPath string, routes []Route) (*Pack, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("read manifest %s: %w", manifestPath, err), errorsx.ReasonVoicePack)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("parse manifest %s: %w", manifestPath, err), errorsx.ReasonVoicePack)
	}

	compiled, err := compileRoutes(routes)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonVoicePack)
	}

	root := filepath.Dir(manifestPath)
	return &Pack{root: root, manifest: manifest, routes: compiled}, nil
}

// ValidateRoutes rejects bad route patterns without loading a
// manifest; config --validate uses it.
func ValidateRoutes(routes []Route) error {
	_, err := compileRoutes(routes)
	return err
}

func compileRoutes(routes []Route) ([]compiledRoute, error) {
	var compiled []compiledRoute
	for _, route := range routes {
		if len(route.Phrases) == 0 {
			continue
		}
		pattern := route.Pattern
		if !route.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile voicepack route pattern %q: %w", route.Pattern, err)
		}
		compiled = append(compiled, compiledRoute{
			events:  route.Events,
			regex:   regex,
			phrases: route.Phrases,
		})
	}
	return compiled, nil
}

// SelectPath picks a phrase variant for the event and returns the
// resolved audio file path. Routes are scanned in order against the
// summary; the first match wins. With no route match the manifest's
// direct event mapping applies. The candidate phrase and variant are
// chosen uniformly at random from rng, so selection is seedable in
// tests. Returns "" when the pack has nothing for this event.
func (p *Pack) SelectPath(event *events.Event, rng *rand.Rand) string {
	var phraseKeys []string
	if event.Summary != "" {
		for _, route := range p.routes {
			if !routeAdmits(route, event.Type) {
				continue
			}
			if route.regex.MatchString(event.Summary) {
				phraseKeys = append(phraseKeys, route.phrases...)
				break
			}
		}
	}

	if len(phraseKeys) == 0 {
		phraseKeys = append(phraseKeys, p.manifest.Events[string(event.Type)]...)
	}
	if len(phraseKeys) == 0 {
		return ""
	}

	phraseKey := phraseKeys[rng.Intn(len(phraseKeys))]
	phrase, ok := p.manifest.Phrases[phraseKey]
	if !ok || len(phrase.Variants) == 0 {
		return ""
	}
	variant := phrase.Variants[rng.Intn(len(phrase.Variants))]

	return p.resolveAudioPath(variant.File)
}

func routeAdmits(route compiledRoute, t events.Type) bool {
	if len(route.events) == 0 {
		return true
	}
	for _, candidate := range route.events {
		if candidate == t {
			return true
		}
	}
	return false
}

// resolveAudioPath keeps variant files inside the manifest directory;
// a manifest must not be able to point playback at arbitrary paths.
func (p *Pack) resolveAudioPath(file string) string {
	candidate := file
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(p.root, candidate)
	}

	root, err := filepath.Abs(p.root)
	if err != nil {
		return ""
	}
	resolved, err := filepath.Abs(candidate)
	if err != nil {
		return ""
	}
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return ""
	}
	if _, err := os.Stat(resolved); err != nil {
		return ""
	}
	return resolved
}
