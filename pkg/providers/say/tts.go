// Package say shells out to the macOS `say` command. It needs no
// network and no API key, which makes it the fallback of last resort on
// Darwin hosts.
package say

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/harunnryd/chime/pkg/configutil"
	"github.com/harunnryd/chime/pkg/synth"
)

type Config struct {
	Voice   string `mapstructure:"voice"`
	RateWPM int    `mapstructure:"rate_wpm"`
}

type Backend struct {
	cfg    Config
	logger *slog.Logger
}

func New(settings map[string]any, logger *slog.Logger) (*Backend, error) {
	var cfg Config
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, fmt.Errorf("decode say settings: %w", err)
	}
	return &Backend{cfg: cfg, logger: logger}, nil
}

func (b *Backend) Name() string           { return "say" }
func (b *Backend) SupportsInstruct() bool { return false }

// Synthesize renders to a temp AIFF file and returns its bytes. The
// command inherits the context, so a budget overrun kills the process.
func (b *Backend) Synthesize(ctx context.Context, req synth.Request) ([]byte, error) {
	voice := req.Voice
	if voice == "" {
		voice = b.cfg.Voice
	}

	outPath := filepath.Join(os.TempDir(), "chime-say-"+uuid.NewString()+".aiff")
	defer os.Remove(outPath)

	args := []string{"-o", outPath}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	if b.cfg.RateWPM > 0 {
		args = append(args, "-r", strconv.Itoa(b.cfg.RateWPM))
	}
	args = append(args, req.Text)

	cmd := exec.CommandContext(ctx, "say", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("say: %w: %s", err, out)
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read say output: %w", err)
	}
	if b.logger != nil {
		b.logger.Debug("say complete",
			slog.String("voice", voice),
			slog.Int("size_bytes", len(audio)))
	}
	return audio, nil
}

func (b *Backend) SynthesizeStream(ctx context.Context, req synth.Request) (<-chan synth.Chunk, error) {
	return synth.OneShotStream(ctx, b, req), nil
}

// Available requires Darwin with the say binary on PATH.
func (b *Backend) Available() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("say")
	return err == nil
}
