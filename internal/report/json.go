package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"MarketScanner/internal/model"
)

// JSONWriter persists each bundle as an indented JSON document, one file per scan date.
type JSONWriter struct {
	dir string
	log zerolog.Logger
}

func NewJSONWriter(dir string, log zerolog.Logger) *JSONWriter {
	return &JSONWriter{dir: dir, log: log}
}

// Path returns the file a bundle is written to.
func (w *JSONWriter) Path(b *model.ScanBundle) string {
	return filepath.Join(w.dir, fmt.Sprintf("market-scan-%s.json", b.ScanTime.Format("2006-01-02")))
}

// Write replaces any earlier scan of the same day.
func (w *JSONWriter) Write(b *model.ScanBundle) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundle: %w", err)
	}

	path := w.Path(b)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}

	w.log.Info().Str("path", path).Int("bytes", len(data)).Msg("scan bundle written")
	return path, nil
}
