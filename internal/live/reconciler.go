package live

import (
	"strings"
	"sync"
	"time"

	"github.com/forPelevin/transub/internal/types"
)

// Reconciler folds a live session's partial-text events into finalized
// segments using turn-complete signals as boundaries. The in-progress
// partial is owned exclusively by the reconciler; the capture path and the
// stop path synchronize through its mutex.
type Reconciler struct {
	mu       sync.Mutex
	start    time.Time
	now      func() time.Time
	partial  strings.Builder
	startMS  int64
	segments []types.Segment
}

// NewReconciler starts a reconciler whose segment times are offsets from
// sessionStart.
func NewReconciler(sessionStart time.Time) *Reconciler {
	return &Reconciler{start: sessionStart, now: time.Now}
}

func (r *Reconciler) elapsedMS() int64 {
	return r.now().Sub(r.start).Milliseconds()
}

// OnPartial appends streamed text to the in-progress partial. The partial's
// start time is fixed at the first non-empty event after the previous turn
// boundary and not revisited.
func (r *Reconciler) OnPartial(text string) {
	if text == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.partial.Len() == 0 {
		r.startMS = r.elapsedMS()
	}
	r.partial.WriteString(text)
}

// OnTurnComplete finalizes the accumulated partial into a segment if its
// trimmed text is non-empty, then resets the partial.
func (r *Reconciler) OnTurnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizeLocked()
}

func (r *Reconciler) finalizeLocked() {
	text := strings.TrimSpace(r.partial.String())
	r.partial.Reset()
	if text == "" {
		return
	}
	r.segments = append(r.segments, types.Segment{
		StartMS: r.startMS,
		EndMS:   r.elapsedMS(),
		Text:    text,
	})
}

// SegmentCount returns the number of finalized segments so far.
func (r *Reconciler) SegmentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.segments)
}

// Finalize applies turn-complete handling to any still-pending partial and
// returns the accumulated transcript. Called on session stop so a trailing
// utterance is not silently dropped. A connection error before a turn
// boundary still loses the in-flight partial text beyond what was received.
func (r *Reconciler) Finalize() types.Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizeLocked()
	segs := make([]types.Segment, len(r.segments))
	copy(segs, r.segments)
	return types.Transcript{Segments: segs}
}
