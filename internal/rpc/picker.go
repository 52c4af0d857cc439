package rpc

import (
	"errors"
	"time"
)

var (
	// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
	ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")
	// ErrChainMismatch marks an endpoint serving a different chain.
	ErrChainMismatch = errors.New("RPC chain mismatch")
)

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// Endpoint is a probed RPC endpoint.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool
	Err         error
}

// Pick selects a healthy endpoint. Fastest scores latency and block recency
// and drops stale nodes; failover takes the first healthy endpoint in order.
func Pick(endpoints []Endpoint, algo Algorithm) (*Endpoint, error) {
	if algo == AlgorithmFailover {
		for i := range endpoints {
			if endpoints[i].Healthy {
				return &endpoints[i], nil
			}
		}
		return nil, noHealthy(endpoints)
	}

	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	var bestScore float64
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy || bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		s := score(e, bestBlock)
		if winner == nil || s > bestScore {
			winner = e
			bestScore = s
		}
	}
	if winner == nil {
		return nil, noHealthy(endpoints)
	}
	return winner, nil
}

// --- scoring ---

func score(e *Endpoint, bestBlock uint64) float64 {
	var s float64

	// Latency score: higher = faster.
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	} else {
		s += 1000.0
	}

	// Loses 1 point per block behind the best.
	s += float64(10 - (bestBlock - e.BlockNumber))
	return s
}

// noHealthy wraps ErrNoHealthyRPC with the first probe failure.
func noHealthy(endpoints []Endpoint) error {
	for _, e := range endpoints {
		if e.Err != nil {
			return errors.Join(ErrNoHealthyRPC, e.Err)
		}
	}
	return ErrNoHealthyRPC
}
