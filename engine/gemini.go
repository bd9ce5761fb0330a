package engine

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"
)

// geminiEngine is the remote backend: same contract as the local one, with
// the Gemini API doing the decoding. StopSequences and MaxOutputTokens are
// enforced server-side; truncateAtStop still runs as a guard so both
// backends behave identically.
type geminiEngine struct {
	client *genai.Client
	model  string
	params Params
	config *genai.GenerateContentConfig
}

func newGeminiEngine(ctx context.Context, apiKey, model string, params Params) (Engine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &geminiEngine{
		client: client,
		model:  model,
		params: params,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(params.Temperature)),
			MaxOutputTokens: int32(params.MaxTokens),
			StopSequences:   params.StopSequences,
		},
	}, nil
}

func (e *geminiEngine) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), e.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(truncateAtStop(result.Text(), e.params.StopSequences)), nil
}

func (e *geminiEngine) GenerateStream(ctx context.Context, prompt string) (TokenStream, error) {
	seq := e.client.Models.GenerateContentStream(ctx, e.model, genai.Text(prompt), e.config)
	pull, stop := iter.Pull2(seq)
	return newTokenStream(&geminiStream{pull: pull, stop: stop}, e.params.StopSequences), nil
}

func (e *geminiEngine) Close() error { return nil }

type geminiStream struct {
	pull func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s *geminiStream) next() (string, error) {
	resp, err, ok := s.pull()
	if !ok {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (s *geminiStream) close() error {
	s.stop()
	return nil
}
