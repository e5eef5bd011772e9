// Package synth defines the vendor-agnostic synthesis contract and the
// fallback chain that wraps it with a time budget and the audio cache.
package synth

import "context"

// Request carries everything a backend needs for one utterance.
type Request struct {
	// Text is the phrase to speak, already truncated by the broker.
	Text string
	// Voice selects the backend's voice; empty means backend default.
	Voice string
	// Instruct is an emotion/style prompt for backends that support it.
	Instruct string
}

// Chunk is one piece of streamed audio. A chunk with Err set is the
// final chunk of a failed stream.
type Chunk struct {
	Data []byte
	Err  error
}

// Backend is the contract for any TTS vendor implementation. Variants
// are distinguished by configuration only; callers never special-case
// backend identity.
type Backend interface {
	// Name returns the backend name for logging, metrics and cache keys.
	Name() string
	// Synthesize returns complete audio for the request.
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	// SynthesizeStream delivers audio incrementally. The channel closes
	// when the stream ends; a final chunk with Err set reports failure.
	SynthesizeStream(ctx context.Context, req Request) (<-chan Chunk, error)
	// SupportsInstruct reports whether Instruct prompts are honored.
	SupportsInstruct() bool
}

// AvailabilityReporter is implemented by backends that can say whether
// they are usable right now (endpoint configured, API key present).
type AvailabilityReporter interface {
	Available() bool
}

// OneShotStream adapts a non-streaming backend to the streaming part of
// the contract: one chunk, then close.
func OneShotStream(ctx context.Context, b Backend, req Request) <-chan Chunk {
	out := make(chan Chunk, 1)
	go func() {
		defer close(out)
		audio, err := b.Synthesize(ctx, req)
		if err != nil {
			out <- Chunk{Err: err}
			return
		}
		select {
		case out <- Chunk{Data: audio}:
		case <-ctx.Done():
		}
	}()
	return out
}
