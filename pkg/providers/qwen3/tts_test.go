package qwen3

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harunnryd/chime/pkg/synth"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// speakServer runs one synthesis exchange per connection.
func speakServer(t *testing.T, handle func(*websocket.Conn, utteranceRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req utteranceRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		handle(conn, req)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamAccumulatesBinaryFrames(t *testing.T) {
	srv := speakServer(t, func(conn *websocket.Conn, req utteranceRequest) {
		conn.WriteMessage(websocket.BinaryMessage, []byte("chunk1"))
		conn.WriteMessage(websocket.BinaryMessage, []byte("chunk2"))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"done"}`))
	})
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": wsURL(srv)}, nil)
	require.NoError(t, err)

	audio, err := b.Synthesize(context.Background(), synth.Request{Text: "Ready."})
	require.NoError(t, err)
	require.Equal(t, []byte("chunk1chunk2"), audio)
}

func TestRequestCarriesSpeakerAndInstruct(t *testing.T) {
	var got utteranceRequest
	srv := speakServer(t, func(conn *websocket.Conn, req utteranceRequest) {
		got = req
		conn.WriteMessage(websocket.BinaryMessage, []byte("a"))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"done"}`))
	})
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": wsURL(srv), "language": "Chinese"}, nil)
	require.NoError(t, err)

	_, err = b.Synthesize(context.Background(), synth.Request{
		Text:     "hello",
		Voice:    "Chelsie",
		Instruct: "speak with urgency",
	})
	require.NoError(t, err)
	require.Equal(t, "hello", got.Text)
	require.Equal(t, "Chelsie", got.Speaker)
	require.Equal(t, "Chinese", got.Language)
	require.Equal(t, "speak with urgency", got.Instruct)
}

func TestServerErrorFrameFailsStream(t *testing.T) {
	srv := speakServer(t, func(conn *websocket.Conn, req utteranceRequest) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"speaker not found"}`))
	})
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": wsURL(srv)}, nil)
	require.NoError(t, err)

	_, err = b.Synthesize(context.Background(), synth.Request{Text: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "speaker not found")
}

func TestContextCancelTearsDownStream(t *testing.T) {
	srv := speakServer(t, func(conn *websocket.Conn, req utteranceRequest) {
		conn.WriteMessage(websocket.BinaryMessage, []byte("partial"))
		// Never send done; the client must not hang.
		time.Sleep(2 * time.Second)
	})
	defer srv.Close()

	b, err := New(map[string]any{"endpoint": wsURL(srv)}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := b.Synthesize(ctx, synth.Request{Text: "hi"})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("synthesize did not return after cancellation")
	}
}

func TestDialFailureIsError(t *testing.T) {
	b, err := New(map[string]any{"endpoint": "ws://127.0.0.1:1/synthesize"}, nil)
	require.NoError(t, err)

	_, err = b.Synthesize(context.Background(), synth.Request{Text: "hi"})
	require.Error(t, err)
}

func TestAvailableRequiresWebsocketScheme(t *testing.T) {
	b, err := New(nil, nil)
	require.NoError(t, err)
	require.True(t, b.Available())

	b2, err := New(map[string]any{"endpoint": "http://127.0.0.1:8124"}, nil)
	require.NoError(t, err)
	require.False(t, b2.Available())
}
