// Package srt parses and renders SubRip subtitle documents.
package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/transub/internal/domain/timecode"
	"github.com/forPelevin/transub/internal/types"
)

// Record is one subtitle block: a display label, the verbatim timing line
// after normalization, and the text (which may span multiple lines).
type Record struct {
	Index  int
	Timing string
	Text   string
}

var (
	reBlockSep  = regexp.MustCompile(`\n{2,}`)
	reAllDigits = regexp.MustCompile(`^\d+$`)
	reDotMillis = regexp.MustCompile(`(\d+:\d{2}:\d{2})\.(\d{1,3})`)
)

// Parse splits a subtitle document into ordered records. Malformed blocks
// are skipped individually; parsing never fails the whole document. List
// order always equals document block order, whether or not index labels are
// present or sequential. Callers should treat a zero-record result as a
// parse failure.
func Parse(doc string) []Record {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")

	var records []Record
	for _, block := range reBlockSep.Split(doc, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}

		cursor := 0
		index := 0
		if reAllDigits.MatchString(strings.TrimSpace(lines[0])) {
			index, _ = strconv.Atoi(strings.TrimSpace(lines[0]))
			cursor = 1
		} else {
			// tolerate a missing label: synthesize the next position
			index = len(records) + 1
		}
		if cursor >= len(lines) {
			continue
		}

		timing := strings.TrimSpace(lines[cursor])
		if !strings.Contains(timing, "-->") {
			continue
		}
		// some tools emit "." as the millisecond separator
		timing = reDotMillis.ReplaceAllString(timing, "$1,$2")

		text := strings.TrimSpace(strings.Join(lines[cursor+1:], "\n"))
		if text == "" {
			continue
		}
		records = append(records, Record{Index: index, Timing: timing, Text: text})
	}
	return records
}

// Reconstruct serializes records back into subtitle wire format, replacing
// each record's text with replacements[i] where one is present. A missing or
// empty replacement falls back to the original text.
func Reconstruct(records []Record, replacements []string) string {
	var b strings.Builder
	for i, r := range records {
		text := r.Text
		if i < len(replacements) && replacements[i] != "" {
			text = replacements[i]
		}
		fmt.Fprintf(&b, "%d\n%s\n%s\n\n", r.Index, r.Timing, text)
	}
	return b.String()
}

// Render serializes a transcript into a subtitle document with sequential
// indices starting at 1.
func Render(t types.Transcript) string {
	var b strings.Builder
	for i, s := range t.Segments {
		fmt.Fprintf(&b, "%d\n%s\n%s\n\n", i+1, timecode.FormatRange(s.StartMS, s.EndMS), s.Text)
	}
	return b.String()
}
