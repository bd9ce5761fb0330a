package engine

import "strings"

// truncateAtStop cuts text at the earliest occurrence of any stop sequence.
func truncateAtStop(text string, stops []string) string {
	cut := -1
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if i := strings.Index(text, stop); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut >= 0 {
		return text[:cut]
	}
	return text
}

// stopFilter scans a stream of text chunks for stop sequences that may be
// split across chunk boundaries. Text that could be the beginning of a stop
// sequence is held back until the next chunk decides it.
type stopFilter struct {
	stops   []string
	pending string
	done    bool
}

func newStopFilter(stops []string) *stopFilter {
	return &stopFilter{stops: stops}
}

// feed consumes one chunk and returns the text safe to emit, plus whether a
// stop sequence was hit. After a hit everything past the stop is discarded
// and the filter stays done.
func (f *stopFilter) feed(chunk string) (string, bool) {
	if f.done {
		return "", true
	}
	f.pending += chunk

	truncated := truncateAtStop(f.pending, f.stops)
	if len(truncated) < len(f.pending) {
		f.pending = ""
		f.done = true
		return truncated, true
	}

	hold := 0
	for _, stop := range f.stops {
		if n := overlap(f.pending, stop); n > hold {
			hold = n
		}
	}
	out := f.pending[:len(f.pending)-hold]
	f.pending = f.pending[len(f.pending)-hold:]
	return out, false
}

// flush releases held-back text at the natural end of the stream.
func (f *stopFilter) flush() string {
	out := f.pending
	f.pending = ""
	return out
}

// overlap reports the length of the longest proper suffix of s that is a
// prefix of stop.
func overlap(s, stop string) int {
	max := len(stop) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(s, stop[:n]) {
			return n
		}
	}
	return 0
}
