package config

import "time"

// GasLimitTokenDeploy is the EstimateGas fallback for a direct ERC-20 deployment
// when the node cannot simulate the creation tx.
const GasLimitTokenDeploy = uint64(1_500_000)

// Timeout constants used across cmd and the deploy packages.
const (
	DefaultDeployTimeout = 60 * time.Second // hosted deploy request
	TxDeployTimeout      = 5 * time.Minute  // direct deployment confirmation wait
)

// Transaction monitor pacing.
const (
	TxPollAttempts   = 30
	TxPollInterval   = 10 * time.Second
	TxPollErrorDelay = 5 * time.Second
)
