// Package renderer plays finished audio through the host's afplay
// command. Playback failures are reported but never escalate past the
// caller; a notification that cannot sound is dropped, not retried.
package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harunnryd/chime/assets"
	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/events"
	"github.com/harunnryd/chime/pkg/metrics"
)

// Player runs one audio file to completion.
type Player interface {
	Play(ctx context.Context, path string, volume float64) error
}

// AfPlayer shells out to afplay. Volume is afplay's 0.0..1.0 scale.
type AfPlayer struct{}

func (AfPlayer) Play(ctx context.Context, path string, volume float64) error {
	cmd := exec.CommandContext(ctx, "afplay", "-v", fmt.Sprintf("%.2f", clampVolume(volume)), path)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("afplay: %w: %s", err, out)
	}
	return nil
}

// clampVolume bounds volume to afplay's 0.0..1.0 scale. Zero stays
// zero: a configured mute plays silence, not full volume.
func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Renderer resolves what to play (bytes, a voicepack file, an earcon)
// down to a Player call.
type Renderer struct {
	Player     Player
	Volume     float64
	EarconsDir string
	Observer   metrics.Observer
	Logger     *slog.Logger
}

func New(volume float64, earconsDir string, observer metrics.Observer, logger *slog.Logger) *Renderer {
	return &Renderer{
		Player:     AfPlayer{},
		Volume:     volume,
		EarconsDir: earconsDir,
		Observer:   observer,
		Logger:     logger,
	}
}

// PlayFile plays an on-disk audio file.
func (r *Renderer) PlayFile(ctx context.Context, path string) error {
	start := time.Now()
	if err := r.Player.Play(ctx, path, r.Volume); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonPlayback)
	}
	r.recordPlayback(start, "file")
	return nil
}

// PlayBytes writes audio to a temp file and plays it.
func (r *Renderer) PlayBytes(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return errorsx.Wrap(fmt.Errorf("empty audio"), errorsx.ReasonPlayback)
	}
	path := filepath.Join(os.TempDir(), "chime-"+uuid.NewString()+".wav")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return errorsx.Wrap(fmt.Errorf("write temp audio: %w", err), errorsx.ReasonPlayback)
	}
	defer os.Remove(path)

	start := time.Now()
	if err := r.Player.Play(ctx, path, r.Volume); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonPlayback)
	}
	r.recordPlayback(start, "bytes")
	return nil
}

// PlayEarcon plays the event's earcon. A file in EarconsDir overrides
// the bundled one; the bundled copy is written out to a temp file
// because afplay reads from disk.
func (r *Renderer) PlayEarcon(ctx context.Context, eventType events.Type) error {
	name := assets.EarconFile(string(eventType))

	if r.EarconsDir != "" {
		override := filepath.Join(r.EarconsDir, filepath.Base(name))
		if _, err := os.Stat(override); err == nil {
			return r.PlayFile(ctx, override)
		}
	}

	audio, err := assets.Earcons.ReadFile(name)
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("bundled earcon %s: %w", name, err), errorsx.ReasonPlayback)
	}
	return r.PlayBytes(ctx, audio)
}

func (r *Renderer) recordPlayback(start time.Time, source string) {
	metrics.Record(r.Observer, metrics.EventPlaybackMS,
		float64(time.Since(start).Milliseconds()),
		map[string]string{"source": source})
	if r.Logger != nil {
		r.Logger.Debug("playback complete",
			slog.String("source", source),
			slog.Duration("elapsed", time.Since(start)))
	}
}
