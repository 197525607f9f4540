package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"emergence.ai/internal/sim/catalogs"
)

// JSONLZstdWriter writes one JSON value per line into a zstd-compressed file.
type JSONLZstdWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) (*JSONLZstdWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &JSONLZstdWriter{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	return err1
}

// DumpHeader is the first line of a manifest dump.
type DumpHeader struct {
	Version int              `json:"version"`
	Digests catalogs.Digests `json:"digests"`
	Items   int              `json:"items"`
	Recipes int              `json:"recipes"`
}

// DumpCatalogs writes a header line followed by one line per interned name.
func DumpCatalogs(path string, cats *catalogs.Catalogs) (int, error) {
	w, err := NewJSONLZstdWriter(path)
	if err != nil {
		return 0, err
	}
	hdr := DumpHeader{Version: 1, Digests: cats.Digests, Items: cats.Items.Len(), Recipes: cats.Recipes.Len()}
	if err := w.Write(hdr); err != nil {
		_ = w.Close()
		return 0, err
	}
	n := 0
	for _, r := range cats.Records() {
		if err := w.Write(r); err != nil {
			_ = w.Close()
			return n, err
		}
		n++
	}
	return n, w.Close()
}
