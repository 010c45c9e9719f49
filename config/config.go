package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules are the bet-validation switches. All three checks default to off,
// which accepts out-of-range outcome indexes and bets on closed or
// resolved markets; operators opt in per deployment.
type Rules struct {
	ValidateOutcomeIndex bool `yaml:"validate_outcome_index"`
	RejectAfterEndTime   bool `yaml:"reject_after_end_time"`
	RejectResolved       bool `yaml:"reject_resolved"`
}

// Config holds all node configuration.
type Config struct {
	NodeID       string `yaml:"node_id"`
	DataDir      string `yaml:"data_dir"`
	RPCPort      int    `yaml:"rpc_port"`
	RPCAuthToken string `yaml:"rpc_auth_token"` // empty → no auth required
	ChainID      string `yaml:"chain_id"`
	Rules        Rules  `yaml:"rules"`
}

// DefaultConfig returns a single-chain development configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:  "node0",
		DataDir: "./data",
		RPCPort: 8545,
		ChainID: "conwaybets-dev",
	}
}

// Load reads a YAML config file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
