// Package assets locates manifest sources on disk and turns their bytes into
// ordered, schema-checked raw entries.
package assets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type Format int

const (
	FormatJSON Format = iota + 1
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Source is one located manifest file.
type Source struct {
	Path       string
	Format     Format
	Compressed bool
}

// FormatOf derives the format from a path, ignoring a trailing .zst.
func FormatOf(path string) (Format, bool, error) {
	compressed := strings.HasSuffix(path, ".zst")
	base := strings.TrimSuffix(path, ".zst")
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json":
		return FormatJSON, compressed, nil
	case ".yaml", ".yml":
		return FormatYAML, compressed, nil
	default:
		return 0, compressed, fmt.Errorf("%w: %s", ErrUnsupportedExt, filepath.Base(path))
	}
}

// Candidates lists the paths tried for rel, in order: rel itself, its zstd
// variant, then the YAML sibling of a .json path and its zstd variant.
func Candidates(rel string) []string {
	out := []string{rel, rel + ".zst"}
	if strings.EqualFold(filepath.Ext(rel), ".json") {
		y := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".yaml"
		out = append(out, y, y+".zst")
	}
	return out
}

// Resolve finds the first existing candidate for rel under root.
func Resolve(root, rel string) (Source, error) {
	for _, c := range Candidates(rel) {
		p := filepath.Join(root, filepath.FromSlash(c))
		st, err := os.Stat(p)
		if err != nil || st.IsDir() {
			continue
		}
		format, compressed, err := FormatOf(p)
		if err != nil {
			return Source{}, err
		}
		return Source{Path: p, Format: format, Compressed: compressed}, nil
	}
	return Source{}, fmt.Errorf("%w: %s under %s", ErrNotFound, rel, root)
}

// Read returns the decompressed bytes of src.
func Read(src Source) ([]byte, error) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	if !src.Compressed {
		return raw, nil
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%s: zstd: %w", filepath.Base(src.Path), err)
	}
	return out, nil
}
