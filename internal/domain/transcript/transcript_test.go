package transcript

import (
	"errors"
	"testing"

	"github.com/forPelevin/transub/internal/types"
)

func TestReconcile_ShiftsByOffset(t *testing.T) {
	raw := []RawSegment{
		{StartSec: 0.5, EndSec: 2.0, Text: " hello "},
		{StartSec: 2.25, EndSec: 4.999, Text: "world"},
	}
	got, err := Reconcile(raw, 55)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	want := []types.Segment{
		{StartMS: 55_500, EndMS: 57_000, Text: "hello"},
		{StartMS: 57_250, EndMS: 59_999, Text: "world"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReconcile_RoundsToMillis(t *testing.T) {
	got, err := Reconcile([]RawSegment{{StartSec: 0.0004, EndSec: 0.0006, Text: "x"}}, 0)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got[0].StartMS != 0 || got[0].EndMS != 1 {
		t.Fatalf("expected [0, 1]ms, got [%d, %d]", got[0].StartMS, got[0].EndMS)
	}
}

func TestReconcile_RejectsInvalidRanges(t *testing.T) {
	cases := []struct {
		name string
		raw  RawSegment
	}{
		{"negative start", RawSegment{StartSec: -1, EndSec: 2, Text: "x"}},
		{"end before start", RawSegment{StartSec: 3, EndSec: 2, Text: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Reconcile([]RawSegment{tc.raw}, 0)
			if !errors.Is(err, types.ErrTranscription) {
				t.Fatalf("expected ErrTranscription, got %v", err)
			}
		})
	}
}

func TestReconcile_Empty(t *testing.T) {
	got, err := Reconcile(nil, 10)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no segments, got %d", len(got))
	}
}
