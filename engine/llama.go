//go:build llama

package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaEngine runs a local GGUF model through llama.cpp. A single mutex
// serializes generation: one backing model instance cannot decode two
// prompts at once, so concurrent requests queue here.
type llamaEngine struct {
	mu     sync.Mutex
	model  *llama.LLama
	params Params
}

func newLlamaEngine(modelPath string, contextSize, gpuLayers int, params Params) (Engine, error) {
	model, err := llama.New(modelPath,
		llama.SetContext(contextSize),
		llama.SetGPULayers(gpuLayers),
	)
	if err != nil {
		return nil, fmt.Errorf("llama.New: %w", err)
	}
	return &llamaEngine{model: model, params: params}, nil
}

func (e *llamaEngine) predictOptions() []llama.PredictOption {
	return []llama.PredictOption{
		llama.SetTokens(e.params.MaxTokens),
		llama.SetTemperature(float32(e.params.Temperature)),
		llama.SetStopWords(e.params.StopSequences...),
	}
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := e.model.Predict(prompt, e.predictOptions()...)
	if err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}
	return strings.TrimSpace(truncateAtStop(out, e.params.StopSequences)), nil
}

func (e *llamaEngine) GenerateStream(ctx context.Context, prompt string) (TokenStream, error) {
	s := &llamaStream{
		tokens: make(chan string, 64),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}

	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		// The callback returning false tells llama.cpp to stop decoding,
		// which covers both caller cancellation and stream teardown.
		e.model.SetTokenCallback(func(token string) bool {
			select {
			case s.tokens <- token:
				return true
			case <-s.done:
				return false
			case <-ctx.Done():
				return false
			}
		})
		_, err := e.model.Predict(prompt, e.predictOptions()...)
		e.model.SetTokenCallback(nil)
		if err != nil {
			s.errc <- fmt.Errorf("predict: %w", err)
		}
		close(s.tokens)
	}()

	return newTokenStream(s, e.params.StopSequences), nil
}

func (e *llamaEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.Free()
	return nil
}

type llamaStream struct {
	tokens    chan string
	errc      chan error
	done      chan struct{}
	closeOnce sync.Once
}

func (s *llamaStream) next() (string, error) {
	token, ok := <-s.tokens
	if !ok {
		select {
		case err := <-s.errc:
			return "", err
		default:
			return "", io.EOF
		}
	}
	return token, nil
}

func (s *llamaStream) close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		// Drain so the producer can observe done and finish.
		go func() {
			for range s.tokens {
			}
		}()
	})
	return nil
}
