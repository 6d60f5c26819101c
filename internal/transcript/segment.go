// Package transcript models the timestamped speech units produced by a
// recognizer and consumed by the caption formatter and dub assembler.
package transcript

import (
	"math"
	"sort"
)

// Segment is one recognized unit of speech. Times are seconds from the start
// of the media.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// StartMS returns the start time rounded to whole milliseconds.
func (s Segment) StartMS() int64 {
	return secondsToMS(s.Start)
}

// EndMS returns the end time rounded to whole milliseconds.
func (s Segment) EndMS() int64 {
	return secondsToMS(s.End)
}

// DurationMS is EndMS minus StartMS. It may be zero or negative for
// malformed input.
func (s Segment) DurationMS() int64 {
	return s.EndMS() - s.StartMS()
}

// Degenerate reports whether the segment has no usable time slot.
func (s Segment) Degenerate() bool {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) {
		return true
	}
	return s.Start < 0 || s.DurationMS() <= 0
}

func secondsToMS(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}

// Usable returns the non-degenerate segments in their original order.
func Usable(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Degenerate() {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// EndOf returns the largest end time in milliseconds across non-degenerate
// segments, or zero when there are none.
func EndOf(segments []Segment) int64 {
	var end int64
	for _, seg := range segments {
		if seg.Degenerate() {
			continue
		}
		if ms := seg.EndMS(); ms > end {
			end = ms
		}
	}
	return end
}

// InOrder reports whether the segments are sorted by start time.
func InOrder(segments []Segment) bool {
	return sort.SliceIsSorted(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}
