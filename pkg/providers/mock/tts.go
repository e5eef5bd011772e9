// Package mock provides a deterministic synthesis backend for tests
// and for the --backend mock escape hatch. It emits a short valid WAV
// tone without touching the network.
package mock

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/harunnryd/chime/pkg/configutil"
	"github.com/harunnryd/chime/pkg/synth"
)

type Config struct {
	LatencyMS  int    `mapstructure:"latency_ms"`
	FailWith   string `mapstructure:"fail_with"`
	DurationMS int    `mapstructure:"duration_ms"`
}

type Backend struct {
	cfg Config

	mu    sync.Mutex
	calls []synth.Request
}

func New(settings map[string]any) (*Backend, error) {
	var cfg Config
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, fmt.Errorf("decode mock settings: %w", err)
	}
	if cfg.DurationMS == 0 {
		cfg.DurationMS = 120
	}
	return &Backend{cfg: cfg}, nil
}

func (b *Backend) Name() string           { return "mock" }
func (b *Backend) SupportsInstruct() bool { return true }
func (b *Backend) Available() bool        { return true }

// Calls returns the requests seen so far, for test assertions.
func (b *Backend) Calls() []synth.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]synth.Request, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *Backend) Synthesize(ctx context.Context, req synth.Request) ([]byte, error) {
	b.mu.Lock()
	b.calls = append(b.calls, req)
	b.mu.Unlock()

	if b.cfg.LatencyMS > 0 {
		select {
		case <-time.After(time.Duration(b.cfg.LatencyMS) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.cfg.FailWith != "" {
		return nil, errors.New(b.cfg.FailWith)
	}
	return toneWAV(req.Text, b.cfg.DurationMS), nil
}

func (b *Backend) SynthesizeStream(ctx context.Context, req synth.Request) (<-chan synth.Chunk, error) {
	return synth.OneShotStream(ctx, b, req), nil
}

// toneWAV renders a mono 16-bit PCM sine tone whose pitch is derived
// from the text, so distinct inputs are audibly distinct.
func toneWAV(text string, durationMS int) []byte {
	const sampleRate = 22050
	var seed uint32
	for _, r := range text {
		seed = seed*31 + uint32(r)
	}
	freq := 300.0 + float64(seed%500)

	samples := sampleRate * durationMS / 1000
	dataLen := samples * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataLen))
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], 1)
	binary.LittleEndian.PutUint32(buf[24:], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:], sampleRate*2)
	binary.LittleEndian.PutUint16(buf[32:], 2)
	binary.LittleEndian.PutUint16(buf[34:], 16)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataLen))

	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(int16(v*8000)))
	}
	return buf
}
