package tuning

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strictness selects how integrity findings (duplicate names, dangling
// references) are handled at load time.
type Strictness string

const (
	Tolerant Strictness = "tolerant"
	Warn     Strictness = "warn"
	Strict   Strictness = "strict"
)

var ErrInvalidStrictness = errors.New("strictness must be tolerant, warn or strict")

func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case "", Tolerant:
		return Tolerant, nil
	case Warn:
		return Warn, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrictness, s)
	}
}

type Tuning struct {
	ManifestDir string     `yaml:"manifest_dir"`
	Strictness  Strictness `yaml:"strictness"`

	Log   LogConfig   `yaml:"log"`
	Index IndexConfig `yaml:"index"`
	Dump  DumpConfig  `yaml:"dump"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type IndexConfig struct {
	Path string `yaml:"path"`
}

type DumpConfig struct {
	Path string `yaml:"path"`
}

func Defaults() Tuning {
	return Tuning{
		ManifestDir: "./assets",
		Strictness:  Tolerant,
		Log:         LogConfig{Level: "info", Format: "pretty"},
		Index:       IndexConfig{Path: "./data/manifests.sqlite"},
		Dump:        DumpConfig{Path: "./data/manifests.jsonl.zst"},
	}
}

// Load reads a tuning file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Validate() error {
	s, err := ParseStrictness(string(t.Strictness))
	if err != nil {
		return err
	}
	t.Strictness = s
	if strings.TrimSpace(t.ManifestDir) == "" {
		return fmt.Errorf("manifest_dir cannot be empty")
	}
	switch t.Log.Format {
	case "", "pretty", "json":
	default:
		return fmt.Errorf("log.format must be pretty or json, got %q", t.Log.Format)
	}
	return nil
}
