package timecode

import "fmt"

// FormatTimestamp renders a non-negative millisecond offset as a subtitle
// timestamp HH:MM:SS,mmm. Hours are not wrapped at 24; there is no calendar
// or timezone semantics, only integer decomposition.
func FormatTimestamp(ms int64) string {
	h := ms / 3_600_000
	m := ms % 3_600_000 / 60_000
	s := ms % 60_000 / 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1_000)
}

// FormatRange renders a start/end pair as a subtitle timing line.
func FormatRange(startMS, endMS int64) string {
	return FormatTimestamp(startMS) + " --> " + FormatTimestamp(endMS)
}
