package ebay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"booklister/internal/pkg/clock"
)

// Tracer records the exact payload sent for each mutating call. The
// trace directory is a write-only audit sink; nothing in the pipeline
// reads it back.
type Tracer interface {
	Trace(sku, operation string, payload any)
}

type NopTracer struct{}

func (NopTracer) Trace(string, string, any) {}

type FileTracer struct {
	dir   string
	clock clock.Clock
}

func NewFileTracer(dir string, clk clock.Clock) *FileTracer {
	return &FileTracer{dir: dir, clock: clk}
}

// Trace writes one timestamped JSON file per call. Failures are logged
// and swallowed; an audit miss must not fail a publish.
func (t *FileTracer) Trace(sku, operation string, payload any) {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		slog.Warn("trace directory unavailable", "dir", t.dir, "error", err)
		return
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		slog.Warn("trace payload not serializable", "sku", sku, "operation", operation, "error", err)
		return
	}

	ts := t.clock.Now().UTC().Format("20060102T150405.000000000")
	name := fmt.Sprintf("%s_%s_%s.json", ts, sku, operation)
	if err := os.WriteFile(filepath.Join(t.dir, name), data, 0o644); err != nil {
		slog.Warn("trace write failed", "file", name, "error", err)
	}
}
