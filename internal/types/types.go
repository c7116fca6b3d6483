package types

import (
	"errors"
	"fmt"
	"strings"
)

// Segment is a finalized, time-bounded unit of transcribed or translated
// text. Times are millisecond offsets from the start of the recording.
type Segment struct {
	StartMS int64  `json:"startMs"`
	EndMS   int64  `json:"endMs"`
	Text    string `json:"text"`
}

// Transcript is an ordered list of segments, ascending by StartMS. Segments
// are append-only: once created they are never mutated or reordered.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

// JoinedText returns the full transcript as the space-joined concatenation
// of segment texts in list order.
func (t Transcript) JoinedText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// Texts returns the segment texts in list order.
func (t Transcript) Texts() []string {
	out := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		out = append(out, s.Text)
	}
	return out
}

// WithTexts returns a copy of the transcript with segment texts replaced
// position-for-position. Timestamps and ordering are untouched.
func (t Transcript) WithTexts(texts []string) (Transcript, error) {
	if len(texts) != len(t.Segments) {
		return Transcript{}, &CardinalityMismatchError{Expected: len(t.Segments), Actual: len(texts)}
	}
	out := Transcript{Segments: make([]Segment, len(t.Segments))}
	copy(out.Segments, t.Segments)
	for i := range out.Segments {
		out.Segments[i].Text = texts[i]
	}
	return out, nil
}

// Terminal failure states for a single operation. None are retried
// automatically; cancellation is context.Canceled, never one of these.
var (
	ErrDecode        = errors.New("audio decode failed")
	ErrTranscription = errors.New("transcription response unusable")
	ErrSubtitleParse = errors.New("no valid subtitle records")
	ErrDeviceAccess  = errors.New("capture device access denied")
	ErrSession       = errors.New("live session fault")
)

// CardinalityMismatchError reports a translation batch whose response did
// not contain exactly one output per input. The batch fails outright:
// padding or truncating would silently misalign texts and timestamps.
type CardinalityMismatchError struct {
	Expected int
	Actual   int
}

func (e *CardinalityMismatchError) Error() string {
	return fmt.Sprintf("translation batch returned %d items, expected %d", e.Actual, e.Expected)
}
