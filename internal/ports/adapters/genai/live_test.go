package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/transub/internal/ports"
)

var upgrader = websocket.Upgrader{}

// liveTestServer speaks just enough of the bidi protocol to exercise the
// session: it records the setup frame and inbound audio, and plays back a
// scripted list of server frames after the first audio chunk arrives.
type liveTestServer struct {
	t       *testing.T
	script  []string
	setup   chan map[string]any
	audio   chan []byte
	lastURL chan string
}

func newLiveTestServer(t *testing.T, script []string) (*liveTestServer, *httptest.Server) {
	ls := &liveTestServer{
		t:       t,
		script:  script,
		setup:   make(chan map[string]any, 1),
		audio:   make(chan []byte, 16),
		lastURL: make(chan string, 1),
	}
	srv := httptest.NewServer(http.HandlerFunc(ls.handle))
	t.Cleanup(srv.Close)
	return ls, srv
}

func (ls *liveTestServer) handle(w http.ResponseWriter, r *http.Request) {
	ls.lastURL <- r.URL.String()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ls.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	var setup map[string]any
	if err := conn.ReadJSON(&setup); err != nil {
		ls.t.Errorf("read setup: %v", err)
		return
	}
	ls.setup <- setup

	for {
		var frame struct {
			RealtimeInput struct {
				MediaChunks []struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"mediaChunks"`
			} `json:"realtimeInput"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		for _, c := range frame.RealtimeInput.MediaChunks {
			pcm, err := base64.StdEncoding.DecodeString(c.Data)
			if err != nil {
				ls.t.Errorf("decode audio: %v", err)
				return
			}
			ls.audio <- pcm
		}
		for _, msg := range ls.script {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		ls.script = nil
	}
}

func recvEvent(t *testing.T, events <-chan ports.LiveEvent) ports.LiveEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return ports.LiveEvent{}
}

func TestLiveSession_TranscriptionEvents(t *testing.T) {
	ls, srv := newLiveTestServer(t, []string{
		`{"serverContent":{"inputTranscription":{"text":"Hel"}}}`,
		`{"setupComplete":{}}`,
		`{"serverContent":{"inputTranscription":{"text":"lo"}}}`,
		`{"serverContent":{"turnComplete":true}}`,
	})

	d := NewLiveDialer("test-key", "", srv.URL)
	sess, err := d.Dial(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	url := <-ls.lastURL
	assert.Contains(t, url, "BidiGenerateContent")
	assert.Contains(t, url, "key=test-key")

	setup := <-ls.setup
	b, _ := json.Marshal(setup)
	assert.Contains(t, string(b), "models/gemini-2.0-flash-live-001")
	assert.Contains(t, string(b), "inputAudioTranscription")

	require.NoError(t, sess.Send([]byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, <-ls.audio)

	ev := recvEvent(t, sess.Events())
	assert.Equal(t, "Hel", ev.PartialText)

	// the setupComplete frame carries no transcription and is skipped
	ev = recvEvent(t, sess.Events())
	assert.Equal(t, "lo", ev.PartialText)

	ev = recvEvent(t, sess.Events())
	assert.True(t, ev.TurnComplete)
}

func TestLiveSession_CloseEndsEvents(t *testing.T) {
	_, srv := newLiveTestServer(t, nil)

	d := NewLiveDialer("test-key", "", srv.URL)
	sess, err := d.Dial(context.Background())
	require.NoError(t, err)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	select {
	case ev, ok := <-sess.Events():
		if ok {
			assert.NoError(t, ev.Err, "local close must not surface as a session error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel did not close after Close")
	}
}

func TestLiveDialer_DialRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	d := NewLiveDialer("test-key", "", srv.URL)
	_, err := d.Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial live endpoint")
}
