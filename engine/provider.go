package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"offline-llm-chat/config"
	"offline-llm-chat/logger"
)

// State is the model lifecycle: Unloaded → Downloading → Loading → Ready,
// or Failed, which is terminal.
type State int

const (
	StateUnloaded State = iota
	StateDownloading
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateDownloading:
		return "downloading"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Provider owns the engine lifecycle. Load is the explicit bootstrap phase;
// request handlers only ever see Engine(), which fails fast with
// ErrUnavailable until the model is Ready and permanently after a Failed
// load.
type Provider struct {
	model  config.ModelConfig
	apiKey string
	params Params

	// newEngine is swapped out in tests.
	newEngine func(ctx context.Context) (Engine, error)

	mu      sync.RWMutex
	state   State
	engine  Engine
	loadErr error
}

func NewProvider(cfg config.AppConfig) *Provider {
	p := &Provider{
		model:  cfg.Model,
		apiKey: cfg.GeminiApiKey,
		params: Params{
			MaxTokens:     cfg.Chat.MaxTokens,
			Temperature:   cfg.Chat.Temperature,
			StopSequences: cfg.Chat.StopSequences,
		},
		state: StateUnloaded,
	}
	p.newEngine = p.buildEngine
	return p
}

// Load drives the model to Ready: for the llama backend it first ensures
// the GGUF file exists locally, then loads it. Any failure is terminal.
func (p *Provider) Load(ctx context.Context) error {
	if p.model.Backend == "llama" {
		p.setState(StateDownloading)
		if err := EnsureModel(ctx, p.modelPath(), p.model.URL); err != nil {
			p.fail(err)
			return err
		}
	}

	p.setState(StateLoading)
	logger.Log.Infof("loading model (backend=%s)", p.model.Backend)
	eng, err := p.newEngine(ctx)
	if err != nil {
		p.fail(err)
		return err
	}

	p.mu.Lock()
	p.engine = eng
	p.state = StateReady
	p.mu.Unlock()
	logger.Log.Info("model loaded")
	return nil
}

func (p *Provider) buildEngine(ctx context.Context) (Engine, error) {
	switch p.model.Backend {
	case "llama":
		return newLlamaEngine(p.modelPath(), p.model.ContextSize, p.model.GPULayers, p.params)
	case "gemini":
		return newGeminiEngine(ctx, p.apiKey, p.model.GeminiModel, p.params)
	default:
		return nil, fmt.Errorf("unknown model backend %q", p.model.Backend)
	}
}

func (p *Provider) modelPath() string {
	return filepath.Join(p.model.Dir, p.model.Name)
}

// Engine returns the loaded engine or ErrUnavailable.
func (p *Provider) Engine() (Engine, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != StateReady {
		return nil, ErrUnavailable
	}
	return p.engine, nil
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Ready reports whether generate calls are currently permitted.
func (p *Provider) Ready() bool {
	return p.State() == StateReady
}

// Err returns the terminal load error, if any.
func (p *Provider) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadErr
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.engine != nil {
		err := p.engine.Close()
		p.engine = nil
		p.state = StateUnloaded
		return err
	}
	return nil
}

func (p *Provider) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Provider) fail(err error) {
	p.mu.Lock()
	p.state = StateFailed
	p.loadErr = err
	p.mu.Unlock()
	logger.Log.Errorf("model load failed: %v", err)
}
