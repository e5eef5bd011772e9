package pocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harunnryd/chime/pkg/resilience"
	"github.com/harunnryd/chime/pkg/synth"
	"github.com/stretchr/testify/require"
)

func TestSynthesizePostsSpeechRequest(t *testing.T) {
	var got speechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("RIFFaudio"))
	}))
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": srv.URL, "voice": "marius"}, nil)
	require.NoError(t, err)

	audio, err := b.Synthesize(context.Background(), synth.Request{Text: "Ready."})
	require.NoError(t, err)
	require.Equal(t, []byte("RIFFaudio"), audio)
	require.Equal(t, "Ready.", got.Input)
	require.Equal(t, "marius", got.Voice)
	require.Equal(t, defaultVariant, got.Model)
}

func TestRequestVoiceOverridesConfig(t *testing.T) {
	var got speechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": srv.URL, "voice": "marius"}, nil)
	require.NoError(t, err)

	_, err = b.Synthesize(context.Background(), synth.Request{Text: "hi", Voice: "alba"})
	require.NoError(t, err)
	require.Equal(t, "alba", got.Voice)
}

func TestTooManyRequestsIsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": srv.URL}, nil)
	require.NoError(t, err)

	_, err = b.Synthesize(context.Background(), synth.Request{Text: "hi"})
	require.Error(t, err)
	require.True(t, resilience.IsRateLimit(err))
}

func TestServerErrorIncludesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model variant not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": srv.URL}, nil)
	require.NoError(t, err)

	_, err = b.Synthesize(context.Background(), synth.Request{Text: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model variant not loaded")
}

func TestAvailableProbesModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": srv.URL}, nil)
	require.NoError(t, err)
	require.True(t, b.Available())

	srv.Close()
	require.False(t, b.Available())
}
