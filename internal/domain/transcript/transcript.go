// Package transcript converts external transcription responses into the
// shared segment model.
package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/transub/internal/types"
)

// RawSegment is one entry of an external transcription response. Times are
// seconds with millisecond precision, relative to the start of the audio
// that was submitted.
type RawSegment struct {
	StartSec float64 `json:"startTime"`
	EndSec   float64 `json:"endTime"`
	Text     string  `json:"text"`
}

// Reconcile shifts raw segments by the chunk's offset into the full
// recording and converts to milliseconds via round(v*1000). The external
// response is untrusted: a negative start or an end before its start is a
// validation failure, not a crash.
func Reconcile(raw []RawSegment, offsetSec float64) ([]types.Segment, error) {
	out := make([]types.Segment, 0, len(raw))
	for i, r := range raw {
		if r.StartSec < 0 || r.EndSec < r.StartSec {
			return nil, fmt.Errorf("%w: segment %d has invalid time range [%v, %v]",
				types.ErrTranscription, i, r.StartSec, r.EndSec)
		}
		out = append(out, types.Segment{
			StartMS: int64(math.Round((r.StartSec + offsetSec) * 1000)),
			EndMS:   int64(math.Round((r.EndSec + offsetSec) * 1000)),
			Text:    strings.TrimSpace(r.Text),
		})
	}
	return out, nil
}
