package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"offline-llm-chat/logger"
)

// EnsureModel downloads the GGUF model file when it is not present on
// disk. The download goes to a .partial file first and is renamed into
// place only when complete, so an interrupted download never leaves a
// truncated model behind.
func EnsureModel(ctx context.Context, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		logger.Log.Infof("model found: %s", path)
		return nil
	}
	if url == "" {
		return fmt.Errorf("model %s missing and no download url configured", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	logger.InfoWithFields("downloading model", logger.Fields{"url": url, "dest": path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	partial := path + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return err
	}

	pw := &progressWriter{total: resp.ContentLength}
	if _, err := io.Copy(f, io.TeeReader(resp.Body, pw)); err != nil {
		f.Close()
		os.Remove(partial)
		return fmt.Errorf("download model: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		return err
	}

	logger.Log.Infof("model download complete: %s", path)
	return nil
}

// progressWriter logs download progress at 10% steps.
type progressWriter struct {
	total      int64
	written    int64
	lastLogged int64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.total <= 0 {
		return len(p), nil
	}
	pct := w.written * 100 / w.total
	if pct >= w.lastLogged+10 {
		w.lastLogged = pct - pct%10
		logger.Log.Infof("downloading model: %d%%", w.lastLogged)
	}
	return len(p), nil
}
