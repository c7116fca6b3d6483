package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/forPelevin/transub/internal/ports"
)

// LiveDialer opens bidirectional live transcription sessions over a
// websocket.
type LiveDialer struct {
	key     string
	model   string
	baseURL string
	dialer  *websocket.Dialer
}

const liveMimeType = "audio/pcm;rate=16000"

func NewLiveDialer(apiKey, model, baseURL string) *LiveDialer {
	if model == "" {
		model = "gemini-2.0-flash-live-001"
	}
	return &LiveDialer{
		key:     apiKey,
		model:   model,
		baseURL: normalizeBaseURL(baseURL),
		dialer:  websocket.DefaultDialer,
	}
}

// Dial connects, sends the session setup frame, and starts the inbound
// event reader.
func (d *LiveDialer) Dial(ctx context.Context) (ports.LiveSession, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	q := u.Query()
	q.Set("key", d.key)
	u.RawQuery = q.Encode()

	conn, resp, err := d.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial live endpoint: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	setup := map[string]any{
		"setup": map[string]any{
			"model": "models/" + d.model,
			"generationConfig": map[string]any{
				"responseModalities": []string{"TEXT"},
			},
			"inputAudioTranscription": map[string]any{},
		},
	}
	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send session setup: %w", err)
	}

	s := &liveSession{
		conn:   conn,
		events: make(chan ports.LiveEvent, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

type liveSession struct {
	conn   *websocket.Conn
	events chan ports.LiveEvent
	done   chan struct{}

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// Send pushes one block of raw PCM16 mono 16 kHz audio to the session.
func (s *liveSession) Send(pcm []byte) error {
	frame := map[string]any{
		"realtimeInput": map[string]any{
			"mediaChunks": []map[string]any{{
				"mimeType": liveMimeType,
				"data":     base64.StdEncoding.EncodeToString(pcm),
			}},
		},
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(frame)
}

func (s *liveSession) Events() <-chan ports.LiveEvent { return s.events }

func (s *liveSession) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return s.conn.Close()
}

// emit delivers an event unless the session was closed under the reader.
func (s *liveSession) emit(ev ports.LiveEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// serverMessage covers the inbound frames the session cares about: streamed
// input transcription text and turn boundaries. Unknown fields are ignored.
type serverMessage struct {
	ServerContent struct {
		InputTranscription struct {
			Text string `json:"text"`
		} `json:"inputTranscription"`
		TurnComplete bool `json:"turnComplete"`
	} `json:"serverContent"`
}

func (s *liveSession) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.isClosed() || isNormalClose(err) {
				return
			}
			s.emit(ports.LiveEvent{Err: err})
			return
		}
		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// tolerate frames we do not model
			continue
		}
		if text := msg.ServerContent.InputTranscription.Text; text != "" {
			if !s.emit(ports.LiveEvent{PartialText: text}) {
				return
			}
		}
		if msg.ServerContent.TurnComplete {
			if !s.emit(ports.LiveEvent{TurnComplete: true}) {
				return
			}
		}
	}
}

func (s *liveSession) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
