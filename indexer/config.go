package indexer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the indexer's optional on-disk configuration, letting a
// collection pin its BM25 parameters, codec choice, and quantization
// ceiling without CLI flags for every run.
type Config struct {
	K1        float64 `yaml:"k1"`
	B         float64 `yaml:"b"`
	Ceiling   uint16  `yaml:"ceiling"`
	CodecTag  string  `yaml:"codec"`
	VocabV1   bool    `yaml:"vocab_v1"`
}

// DefaultConfig matches the parameter values the original unittest fixture
// exercises (k1=0.9, b=0.4), plus a full 16-bit quantization ceiling and
// variable-byte as the universally-supported codec.
func DefaultConfig() Config {
	return Config{K1: 0.9, B: 0.4, Ceiling: 65535, CodecTag: "c"}
}

// LoadConfig reads and parses a YAML config file, filling in any field the
// file omits from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("indexer: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("indexer: parse config %s: %w", path, err)
	}
	return cfg, nil
}
