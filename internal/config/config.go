package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultAPIURL   = "http://localhost:3000"
	defaultStrategy = "remote-fallback"
	defaultChainID  = 97
	defaultLogLevel = "info"

	configFile  = "config.json"
	walletsFile = "wallets.json"

	// EnvPrefix prefixes every environment override, e.g. TOKENFORGE_API_URL.
	EnvPrefix = "TOKENFORGE"
	// EnvConfigDir selects the config directory when no --config flag is given.
	EnvConfigDir = "TOKENFORGE_CONFIG_DIR"
)

// ErrUnknownKey is returned by Set for keys outside the config schema.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to
// $TOKENFORGE_CONFIG_DIR, then ~/.tokenforge. TOKENFORGE_* environment
// variables override file values.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".tokenforge")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.configDir = dir
	if cfg.RPCURLs == nil {
		cfg.RPCURLs = make(map[string]string)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"api_url", "deploy_timeout", "strategy", "default_chain_id",
		"default_wallet", "artifact_path", "log_level", "metrics_file", "rpc_algorithm", "rpc_urls.<chainId>",
	}
}

// Get returns the printable value of key. rpc_urls entries are addressed
// as rpc_urls.<chainId>.
func (c *Config) Get(key string) (string, error) {
	if id, ok := strings.CutPrefix(key, "rpc_urls."); ok {
		return c.RPCURLs[id], nil
	}
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "deploy_timeout":
		return strconv.Itoa(c.DeployTimeout), nil
	case "strategy":
		return c.Strategy, nil
	case "default_chain_id":
		return strconv.FormatInt(c.DefaultChainID, 10), nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "artifact_path":
		return c.ArtifactPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "metrics_file":
		return c.MetricsFile, nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set parses value into key. An empty rpc_urls.<chainId> value removes the entry.
func (c *Config) Set(key, value string) error {
	if id, ok := strings.CutPrefix(key, "rpc_urls."); ok {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return fmt.Errorf("invalid chain id %q in %s", id, key)
		}
		if value == "" {
			delete(c.RPCURLs, id)
			return nil
		}
		if c.RPCURLs == nil {
			c.RPCURLs = make(map[string]string)
		}
		c.RPCURLs[id] = value
		return nil
	}

	switch key {
	case "api_url":
		c.APIURL = strings.TrimRight(value, "/")
	case "deploy_timeout":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("deploy_timeout must be a positive number of seconds, got %q", value)
		}
		c.DeployTimeout = n
	case "strategy":
		if !slices.Contains(strategies, value) {
			return fmt.Errorf("strategy must be one of %s, got %q", strings.Join(strategies, ", "), value)
		}
		c.Strategy = value
	case "default_chain_id":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("default_chain_id must be a positive integer, got %q", value)
		}
		c.DefaultChainID = n
	case "default_wallet":
		c.DefaultWallet = value
	case "artifact_path":
		c.ArtifactPath = value
	case "log_level":
		c.LogLevel = value
	case "metrics_file":
		c.MetricsFile = value
	case "rpc_algorithm":
		if !slices.Contains(rpcAlgorithms, value) {
			return fmt.Errorf("rpc_algorithm must be one of %s, got %q", strings.Join(rpcAlgorithms, ", "), value)
		}
		c.RPCAlgorithm = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// --- helpers ---

var (
	strategies    = []string{"remote", "remote-fallback", "direct"}
	rpcAlgorithms = []string{"fastest", "failover"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("deploy_timeout", int(DefaultDeployTimeout.Seconds()))
	v.SetDefault("strategy", defaultStrategy)
	v.SetDefault("default_chain_id", defaultChainID)
	v.SetDefault("default_wallet", "")
	v.SetDefault("rpc_urls", map[string]string{})
	v.SetDefault("artifact_path", "")
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("metrics_file", "")
	v.SetDefault("rpc_algorithm", "fastest")
}
