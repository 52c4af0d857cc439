package config

import (
	"strconv"
	"time"
)

// Config holds all tokenforge configuration.
type Config struct {
	APIURL         string            `json:"api_url"          mapstructure:"api_url"`
	DeployTimeout  int               `json:"deploy_timeout"   mapstructure:"deploy_timeout"` // seconds
	Strategy       string            `json:"strategy"         mapstructure:"strategy"`       // "remote" | "remote-fallback" | "direct"
	DefaultChainID int64             `json:"default_chain_id" mapstructure:"default_chain_id"`
	DefaultWallet  string            `json:"default_wallet"   mapstructure:"default_wallet"`
	RPCURLs        map[string]string `json:"rpc_urls"         mapstructure:"rpc_urls"` // chain id -> URL
	RPCAlgorithm   string            `json:"rpc_algorithm"    mapstructure:"rpc_algorithm"` // "fastest" | "failover"
	ArtifactPath   string            `json:"artifact_path"    mapstructure:"artifact_path"`
	LogLevel       string            `json:"log_level"        mapstructure:"log_level"`
	MetricsFile    string            `json:"metrics_file"     mapstructure:"metrics_file"`

	// internal: config dir path used for Save()
	configDir string
}

// Timeout returns the deploy timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.DeployTimeout <= 0 {
		return DefaultDeployTimeout
	}
	return time.Duration(c.DeployTimeout) * time.Second
}

// RPCURL returns the configured RPC endpoint for chainID, or "".
func (c *Config) RPCURL(chainID int64) string {
	return c.RPCURLs[strconv.FormatInt(chainID, 10)]
}
