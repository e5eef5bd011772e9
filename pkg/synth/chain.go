package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/harunnryd/chime/pkg/cache"
	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/metrics"
	"github.com/harunnryd/chime/pkg/resilience"
)

// Chain wraps the primary backend with a synthesis time budget, one
// ordered fallback attempt, and the audio cache. A cache hit
// short-circuits synthesis entirely; a successful synthesis populates
// the cache best-effort.
type Chain struct {
	Primary  Backend
	Fallback Backend
	Budget   resilience.Budget
	Cache    *cache.AudioCache
	Observer metrics.Observer
	Logger   *slog.Logger
}

// Synthesize resolves audio for the request through cache, primary and
// fallback. Both backends failing is a terminal provider error; the
// caller degrades to an earcon.
func (c *Chain) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	logger := c.logger()

	if c.Cache != nil {
		key := c.cacheKey(c.Primary, req)
		if audio, ok := c.Cache.Get(key); ok {
			metrics.Record(c.Observer, metrics.EventCacheHit, 1, map[string]string{"backend": c.Primary.Name()})
			logger.Debug("cache hit", slog.String("backend", c.Primary.Name()))
			return audio, nil
		}
		metrics.Record(c.Observer, metrics.EventCacheMiss, 1, map[string]string{"backend": c.Primary.Name()})
	}

	audio, primaryErr := c.attempt(ctx, c.Primary, req)
	if primaryErr == nil {
		c.store(c.Primary, req, audio)
		return audio, nil
	}

	logger.Warn("primary backend failed",
		slog.String("backend", c.Primary.Name()),
		slog.Bool("timeout", resilience.IsBudgetExceeded(primaryErr)),
		slog.String("error", primaryErr.Error()))

	if c.Fallback == nil || c.Fallback.Name() == c.Primary.Name() {
		return nil, wrapProviderErr(primaryErr)
	}

	metrics.Record(c.Observer, metrics.EventFallbackUsed, 1, map[string]string{
		"primary":  c.Primary.Name(),
		"fallback": c.Fallback.Name(),
	})

	audio, fallbackErr := c.attempt(ctx, c.Fallback, req)
	if fallbackErr == nil {
		c.store(c.Fallback, req, audio)
		return audio, nil
	}

	logger.Warn("fallback backend failed",
		slog.String("backend", c.Fallback.Name()),
		slog.String("error", fallbackErr.Error()))

	return nil, wrapProviderErr(errors.Join(primaryErr, fallbackErr))
}

// attempt runs one backend under the budget, accumulating streamed
// chunks. A budget expiry cancels the in-flight stream and discards any
// partial audio; partial results are never returned.
func (c *Chain) attempt(ctx context.Context, b Backend, req Request) ([]byte, error) {
	if b == nil {
		return nil, errors.New("no backend configured")
	}

	start := time.Now()
	var buf bytes.Buffer
	err := c.Budget.Run(ctx, func(ctx context.Context) error {
		chunks, err := b.SynthesizeStream(ctx, req)
		if err != nil {
			return err
		}
		for chunk := range chunks {
			if chunk.Err != nil {
				return chunk.Err
			}
			buf.Write(chunk.Data)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize with %s: %w", b.Name(), err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("synthesize with %s: empty audio", b.Name())
	}

	metrics.Record(c.Observer, metrics.EventSynthMS, float64(time.Since(start).Milliseconds()), map[string]string{
		"backend": b.Name(),
	})
	return buf.Bytes(), nil
}

func (c *Chain) store(b Backend, req Request, audio []byte) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.Put(c.cacheKey(b, req), audio); err != nil {
		c.logger().Warn("cache write failed", slog.String("error", err.Error()))
	}
}

// cacheKey fingerprints the voice parameters alongside the exact text
// and backend name. Instruct participates only for backends that honor
// it, so an unused style prompt does not fragment the cache.
func (c *Chain) cacheKey(b Backend, req Request) string {
	fingerprint := req.Voice
	if b.SupportsInstruct() && req.Instruct != "" {
		fingerprint += "\x01" + req.Instruct
	}
	return cache.Key(b.Name(), req.Text, fingerprint)
}

func (c *Chain) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func wrapProviderErr(err error) error {
	if resilience.IsBudgetExceeded(err) {
		return errorsx.Wrap(err, errorsx.ReasonProviderTimeout)
	}
	if resilience.IsRateLimit(err) {
		return errorsx.Wrap(err, errorsx.ReasonProviderRateLimit)
	}
	return errorsx.Wrap(err, errorsx.ReasonProviderSynth)
}

// FormatTimeout renders the budget for log lines and models output.
func FormatTimeout(b resilience.Budget) string {
	if b.Timeout <= 0 {
		return "disabled"
	}
	return strconv.FormatInt(int64(b.Timeout/time.Second), 10) + "s"
}
