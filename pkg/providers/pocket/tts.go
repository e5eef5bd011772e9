// Package pocket talks to a local PocketTTS inference server over its
// OpenAI-compatible speech endpoint. The server owns model weights and
// inference; this client only moves text in and wav bytes out.
package pocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/harunnryd/chime/pkg/configutil"
	"github.com/harunnryd/chime/pkg/resilience"
	"github.com/harunnryd/chime/pkg/synth"
)

const (
	defaultEndpoint = "http://127.0.0.1:8123"
	defaultVariant  = "b6369a24"
	defaultVoice    = "alba"
)

type Config struct {
	Endpoint string `mapstructure:"endpoint"`
	Variant  string `mapstructure:"variant"`
	Voice    string `mapstructure:"voice"`
	Format   string `mapstructure:"format"`
}

type Backend struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

type speechRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Voice  string `json:"voice"`
	Format string `json:"response_format,omitempty"`
}

// New builds the backend from the pocket_tts settings map.
func New(settings map[string]any, logger *slog.Logger) (*Backend, error) {
	var cfg Config
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, fmt.Errorf("decode pocket-tts settings: %w", err)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Variant == "" {
		cfg.Variant = defaultVariant
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoice
	}
	if cfg.Format == "" {
		cfg.Format = "wav"
	}
	return &Backend{
		cfg:    cfg,
		logger: logger,
		// The chain's budget context bounds each request; this client
		// timeout is only a guard for unbudgeted callers.
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (b *Backend) Name() string           { return "pocket-tts" }
func (b *Backend) SupportsInstruct() bool { return false }

func (b *Backend) Synthesize(ctx context.Context, req synth.Request) ([]byte, error) {
	voice := req.Voice
	if voice == "" {
		voice = b.cfg.Voice
	}

	body, err := json.Marshal(speechRequest{
		Model:  b.cfg.Variant,
		Input:  req.Text,
		Voice:  voice,
		Format: b.cfg.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.Endpoint+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build speech request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pocket-tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, resilience.RateLimitError{Provider: "pocket-tts", Message: resp.Status}
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pocket-tts status %d: %s", resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pocket-tts audio: %w", err)
	}

	if b.logger != nil {
		b.logger.Debug("pocket-tts synthesized",
			slog.Int("text_len", len(req.Text)),
			slog.Int("audio_bytes", len(audio)),
			slog.String("voice", voice))
	}
	return audio, nil
}

func (b *Backend) SynthesizeStream(ctx context.Context, req synth.Request) (<-chan synth.Chunk, error) {
	return synth.OneShotStream(ctx, b, req), nil
}

// Available reports whether the local server answers its models probe.
func (b *Backend) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.Endpoint+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
