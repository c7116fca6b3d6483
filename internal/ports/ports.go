package ports

import (
	"context"
	"io"

	"github.com/forPelevin/transub/internal/types"
)

// Transcriber turns one chunk of encoded audio into time-aligned segments.
// Implementations shift segment times by offsetSec so results from
// successive chunks line up on the full recording's timeline.
type Transcriber interface {
	TranscribeChunk(ctx context.Context, audio []byte, mimeType string, offsetSec float64) ([]types.Segment, error)
}

// Translator translates a batch of texts, preserving order and cardinality.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// Synthesizer renders text to raw PCM16 mono audio at 24000 Hz.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// LiveEvent is one inbound notification from a live transcription session.
// Exactly one field is meaningful per event; a non-nil Err is terminal.
type LiveEvent struct {
	PartialText  string
	TurnComplete bool
	Err          error
}

// LiveSession is a bidirectional live transcription stream. Send accepts
// raw PCM16 mono 16000 Hz blocks and must not be called after Close. The
// events channel is closed when the session ends.
type LiveSession interface {
	Send(pcm []byte) error
	Events() <-chan LiveEvent
	Close() error
}

// LiveDialer opens live transcription sessions.
type LiveDialer interface {
	Dial(ctx context.Context) (LiveSession, error)
}

// AudioDecoder reads audio files into decoded sample buffers.
type AudioDecoder interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	DecodePCM16(ctx context.Context, path string, sampleRate, channels int) ([][]float64, error)
}

// AudioCapture opens the default capture device as a raw PCM16 mono
// 16000 Hz byte stream. Closing the reader releases the device.
type AudioCapture interface {
	Capture(ctx context.Context) (io.ReadCloser, error)
}
