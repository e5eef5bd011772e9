// Package qwen3 streams audio from a local Qwen3-TTS inference server
// over a websocket. The server is an opaque synthesis capability; this
// client sends one utterance request and accumulates binary frames
// until the server signals completion.
package qwen3

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/harunnryd/chime/pkg/configutil"
	"github.com/harunnryd/chime/pkg/resilience"
	"github.com/harunnryd/chime/pkg/synth"
)

const (
	defaultEndpoint = "ws://127.0.0.1:8124/synthesize"
	defaultSpeaker  = "Ryan"
	defaultLanguage = "English"
)

type Config struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	Speaker  string `mapstructure:"speaker"`
	Language string `mapstructure:"language"`
	Device   string `mapstructure:"device"`
}

type Backend struct {
	cfg    Config
	logger *slog.Logger
}

// utteranceRequest opens a synthesis stream on the server.
type utteranceRequest struct {
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Speaker  string `json:"speaker"`
	Language string `json:"language"`
	Instruct string `json:"instruct,omitempty"`
	Device   string `json:"device,omitempty"`
}

// controlMessage is a text frame from the server; binary frames carry
// audio.
type controlMessage struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// New builds the backend from the qwen3_tts settings map.
func New(settings map[string]any, logger *slog.Logger) (*Backend, error) {
	var cfg Config
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, fmt.Errorf("decode qwen3-tts settings: %w", err)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Speaker == "" {
		cfg.Speaker = defaultSpeaker
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Device == "" {
		cfg.Device = "auto"
	}
	return &Backend{cfg: cfg, logger: logger}, nil
}

func (b *Backend) Name() string           { return "qwen3-tts" }
func (b *Backend) SupportsInstruct() bool { return true }

// Synthesize drains the stream into one buffer.
func (b *Backend) Synthesize(ctx context.Context, req synth.Request) ([]byte, error) {
	chunks, err := b.SynthesizeStream(ctx, req)
	if err != nil {
		return nil, err
	}
	var audio []byte
	for chunk := range chunks {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		audio = append(audio, chunk.Data...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return audio, nil
}

// SynthesizeStream dials the server, sends the utterance request, and
// forwards binary frames as chunks. Context cancellation tears the
// connection down, which unblocks the read loop mid-stream.
func (b *Backend) SynthesizeStream(ctx context.Context, req synth.Request) (<-chan synth.Chunk, error) {
	speaker := req.Voice
	if speaker == "" {
		speaker = b.cfg.Speaker
	}

	dialer := websocket.Dialer{Proxy: http.ProxyFromEnvironment}
	conn, resp, err := dialer.DialContext(ctx, b.cfg.Endpoint, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return nil, resilience.RateLimitError{Provider: "qwen3-tts", Message: resp.Status}
		}
		return nil, fmt.Errorf("dial qwen3-tts at %s: %w", b.cfg.Endpoint, err)
	}

	if err := conn.WriteJSON(utteranceRequest{
		Text:     req.Text,
		Model:    b.cfg.Model,
		Speaker:  speaker,
		Language: b.cfg.Language,
		Instruct: req.Instruct,
		Device:   b.cfg.Device,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send qwen3-tts request: %w", err)
	}

	out := make(chan synth.Chunk, 16)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()

		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					out <- synth.Chunk{Err: ctx.Err()}
				} else {
					out <- synth.Chunk{Err: fmt.Errorf("read qwen3-tts stream: %w", err)}
				}
				return
			}

			switch messageType {
			case websocket.BinaryMessage:
				select {
				case out <- synth.Chunk{Data: data}:
				case <-ctx.Done():
					out <- synth.Chunk{Err: ctx.Err()}
					return
				}
			case websocket.TextMessage:
				var control controlMessage
				if err := json.Unmarshal(data, &control); err != nil {
					out <- synth.Chunk{Err: fmt.Errorf("parse qwen3-tts control frame: %w", err)}
					return
				}
				switch control.Type {
				case "done":
					return
				case "error":
					out <- synth.Chunk{Err: fmt.Errorf("qwen3-tts server: %s", control.Error)}
					return
				}
			}
		}
	}()

	if b.logger != nil {
		b.logger.Debug("qwen3-tts stream opened",
			slog.String("speaker", speaker),
			slog.Bool("instruct", req.Instruct != ""))
	}
	return out, nil
}

// Available requires a configured websocket endpoint.
func (b *Backend) Available() bool {
	u, err := url.Parse(b.cfg.Endpoint)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Scheme, "ws")
}
