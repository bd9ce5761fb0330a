// Package engine wraps a language model behind a small generation
// interface with whole-response and token-stream modes.
package engine

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable is returned for generate calls while the model is not in
// the Ready state.
var ErrUnavailable = errors.New("model not loaded")

// Params bounds every generation run.
type Params struct {
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// Engine generates text from a fully assembled prompt. Implementations
// serialize access to the backing model themselves.
type Engine interface {
	// Generate blocks until a full response, trimmed of surrounding
	// whitespace and truncated at the first stop sequence.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream produces increments in decode order. The stream is
	// finite and not restartable.
	GenerateStream(ctx context.Context, prompt string) (TokenStream, error)

	Close() error
}

// TokenStream is a finite, consumer-driven sequence of text increments.
// Next returns io.EOF once exhausted. Close releases the underlying
// generation and must be called when abandoning the stream early.
type TokenStream interface {
	Next() (string, error)
	Close() error
}

// rawStream is the backend-facing half of a TokenStream, before
// stop-sequence filtering.
type rawStream interface {
	next() (string, error)
	close() error
}

// filteredStream applies the stop filter to a backend stream so streamed
// output is truncated at stop sequences exactly like the sync path.
type filteredStream struct {
	raw    rawStream
	filter *stopFilter
	eof    bool
	err    error
}

func newTokenStream(raw rawStream, stops []string) TokenStream {
	return &filteredStream{raw: raw, filter: newStopFilter(stops)}
}

func (s *filteredStream) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.eof {
		return "", io.EOF
	}
	for {
		chunk, err := s.raw.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
				// Held-back text was only a stop-sequence prefix, not a
				// full stop sequence; at natural end it is real output.
				if rest := s.filter.flush(); rest != "" {
					return rest, nil
				}
				return "", io.EOF
			}
			s.err = err
			return "", err
		}

		out, stopped := s.filter.feed(chunk)
		if stopped {
			s.eof = true
			_ = s.raw.close()
			if out != "" {
				return out, nil
			}
			return "", io.EOF
		}
		if out != "" {
			return out, nil
		}
	}
}

func (s *filteredStream) Close() error {
	return s.raw.close()
}
