// Package deepgram synthesizes speech through the Deepgram Speak REST
// API. Voices are Aura model names, so the request voice maps onto the
// model option.
package deepgram

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/speak/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/speak"

	"github.com/harunnryd/chime/pkg/configutil"
	"github.com/harunnryd/chime/pkg/synth"
)

const defaultModel = "aura-2-thalia-en"

type Config struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	Encoding  string `mapstructure:"encoding"`
	Container string `mapstructure:"container"`
}

type Backend struct {
	cfg    Config
	logger *slog.Logger
}

// New builds the backend from the deepgram settings map. The API key
// falls back to DEEPGRAM_API_KEY so configs never have to embed it.
func New(settings map[string]any, logger *slog.Logger) (*Backend, error) {
	var cfg Config
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, fmt.Errorf("decode deepgram settings: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Backend{cfg: cfg, logger: logger}, nil
}

func (b *Backend) Name() string           { return "deepgram" }
func (b *Backend) SupportsInstruct() bool { return false }

func (b *Backend) Synthesize(ctx context.Context, req synth.Request) ([]byte, error) {
	model := b.cfg.Model
	if req.Voice != "" {
		model = req.Voice
	}

	options := &interfaces.SpeakOptions{
		Model:     model,
		Encoding:  b.cfg.Encoding,
		Container: b.cfg.Container,
	}

	rest := client.NewREST(b.cfg.APIKey, &interfaces.ClientOptions{})
	speaker := api.New(rest)

	buf := &interfaces.RawResponse{}
	if _, err := speaker.ToStream(ctx, req.Text, options, buf); err != nil {
		return nil, fmt.Errorf("deepgram speak: %w", err)
	}

	audio := buf.Bytes()
	if b.logger != nil {
		b.logger.Debug("deepgram speak complete",
			slog.String("model", model),
			slog.Int("size_bytes", len(audio)))
	}
	return audio, nil
}

func (b *Backend) SynthesizeStream(ctx context.Context, req synth.Request) (<-chan synth.Chunk, error) {
	return synth.OneShotStream(ctx, b, req), nil
}

// Available requires an API key; there is no local server to probe.
func (b *Backend) Available() bool { return b.cfg.APIKey != "" }
