// Package progress tracks an approximate completion signal across pipeline
// stages.
package progress

import "sync/atomic"

// Tracker counts completed steps out of a known total. A nil Tracker is
// valid and ignores all calls.
type Tracker struct {
	total    int64
	done     atomic.Int64
	onChange func(done, total int)
}

// New returns a tracker over total steps. onChange, if non-nil, is invoked
// after every Step from the stepping goroutine.
func New(total int, onChange func(done, total int)) *Tracker {
	if total < 0 {
		total = 0
	}
	return &Tracker{total: int64(total), onChange: onChange}
}

// Step records one completed unit of work.
func (t *Tracker) Step() {
	if t == nil {
		return
	}
	d := t.done.Add(1)
	if t.onChange != nil {
		t.onChange(int(d), int(t.total))
	}
}
