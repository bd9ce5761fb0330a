//go:build !llama

package engine

import "errors"

// The llama.cpp backend needs cgo and the llama build tag. Binaries built
// without it can still run the gemini backend.
func newLlamaEngine(modelPath string, contextSize, gpuLayers int, params Params) (Engine, error) {
	return nil, errors.New("llama backend not compiled in, rebuild with -tags llama")
}
