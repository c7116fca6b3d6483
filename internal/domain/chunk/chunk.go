// Package chunk divides a decoded audio buffer into bounded-duration
// sub-buffers with deterministic offsets.
package chunk

import "math"

// Span is one bounded-duration slice of a longer recording.
type Span struct {
	OffsetSec   float64
	DurationSec float64
}

// Buffer is decoded multi-channel audio with a known sample rate. Channel
// slices are frame-indexed and equal length.
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// Frames returns the per-channel frame count.
func (b Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// DurationSec returns the buffer duration in seconds.
func (b Buffer) DurationSec() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Plan divides a total duration into consecutive spans of at most chunkSec
// seconds: offset[i] = i*chunkSec, duration[i] = min(chunkSec, total-offset),
// count = ceil(total/chunk). Callers with total <= chunkSec should skip
// planning and process the whole buffer as one unit.
func Plan(totalSec, chunkSec float64) []Span {
	if totalSec <= 0 || chunkSec <= 0 {
		return nil
	}
	n := int(math.Ceil(totalSec / chunkSec))
	spans := make([]Span, 0, n)
	for i := 0; i < n; i++ {
		off := float64(i) * chunkSec
		dur := chunkSec
		if rem := totalSec - off; rem < dur {
			dur = rem
		}
		spans = append(spans, Span{OffsetSec: off, DurationSec: dur})
	}
	return spans
}

// Extract copies the span's frames out of src into a fresh buffer. Samples
// are copied verbatim with no resampling or windowing, so a span boundary
// may cut mid-waveform.
func Extract(src Buffer, span Span) Buffer {
	frameOff := int(span.OffsetSec * float64(src.SampleRate))
	frameCount := int(span.DurationSec * float64(src.SampleRate))
	total := src.Frames()
	if frameOff > total {
		frameOff = total
	}
	if frameOff+frameCount > total {
		frameCount = total - frameOff
	}
	out := Buffer{
		SampleRate: src.SampleRate,
		Channels:   make([][]float64, len(src.Channels)),
	}
	for i, ch := range src.Channels {
		out.Channels[i] = append([]float64(nil), ch[frameOff:frameOff+frameCount]...)
	}
	return out
}
