package oracle

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source describes one configured price feed.
type Source struct {
	Name     string        `yaml:"name"`
	URL      string        `yaml:"url"`
	Enabled  *bool         `yaml:"enabled"`
	Weight   float64       `yaml:"weight"`
	Timeout  time.Duration `yaml:"timeout"`
	Fallback bool          `yaml:"fallback"`
}

// IsEnabled treats an absent flag as enabled, matching the config convention.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Target binds a market symbol to its ordered source list.
type Target struct {
	Symbol  string   `yaml:"symbol"`
	Sources []Source `yaml:"sources"`
}

// FallbackPolicy tunes the quorum rule.
type FallbackPolicy struct {
	TimeoutMs          int `yaml:"timeoutMs"`
	ChainlinkThreshold int `yaml:"chainlinkThreshold"`
}

// FileConfig is the on-disk oracle configuration document. It is re-read on
// every epoch so source changes take effect without a restart.
type FileConfig struct {
	Targets  []Target       `yaml:"targets"`
	Fallback FallbackPolicy `yaml:"fallback"`
}

// DefaultTimeout returns the policy timeout, defaulting to five seconds.
func (p FallbackPolicy) DefaultTimeout() time.Duration {
	if p.TimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// Quorum returns the minimum successful source count before the fallback
// source is consulted.
func (p FallbackPolicy) Quorum() int {
	if p.ChainlinkThreshold <= 0 {
		return 3
	}
	return p.ChainlinkThreshold
}

// LoadConfig reads and parses the oracle targets file.
func LoadConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oracle config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse oracle config: %w", err)
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("oracle config %s declares no targets", path)
	}
	return &cfg, nil
}

// FindTarget locates the target entry for the requested symbol.
func (c *FileConfig) FindTarget(symbol string) (*Target, error) {
	for i := range c.Targets {
		if c.Targets[i].Symbol == symbol {
			return &c.Targets[i], nil
		}
	}
	return nil, fmt.Errorf("no oracle target configured for %s", symbol)
}
