package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offline-llm-chat/config"
)

type nopEngine struct{}

func (nopEngine) Generate(ctx context.Context, prompt string) (string, error) { return "", nil }
func (nopEngine) GenerateStream(ctx context.Context, prompt string) (TokenStream, error) {
	return nil, nil
}
func (nopEngine) Close() error { return nil }

func testProvider() *Provider {
	// gemini backend skips the download phase
	return NewProvider(config.AppConfig{Model: config.ModelConfig{Backend: "gemini"}})
}

func TestProviderUnloadedFailsFast(t *testing.T) {
	p := testProvider()

	assert.Equal(t, StateUnloaded, p.State())
	assert.False(t, p.Ready())

	_, err := p.Engine()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestProviderLoadReachesReady(t *testing.T) {
	p := testProvider()
	p.newEngine = func(ctx context.Context) (Engine, error) { return nopEngine{}, nil }

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, StateReady, p.State())
	assert.True(t, p.Ready())

	eng, err := p.Engine()
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestProviderLoadFailureIsTerminal(t *testing.T) {
	p := testProvider()
	boom := errors.New("no such model")
	p.newEngine = func(ctx context.Context) (Engine, error) { return nil, boom }

	err := p.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, p.State())
	assert.ErrorIs(t, p.Err(), boom)

	_, err = p.Engine()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestProviderUnknownBackend(t *testing.T) {
	p := NewProvider(config.AppConfig{Model: config.ModelConfig{Backend: "banana"}})

	err := p.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unloaded", StateUnloaded.String())
	assert.Equal(t, "downloading", StateDownloading.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}
