package rpc

import (
	"context"
	"time"
)

const defaultProbeTimeout = 5 * time.Second

// Selector picks the endpoint a direct deploy sends its transaction through.
type Selector struct {
	algo    Algorithm
	timeout time.Duration
}

// Option configures a Selector.
type Option func(*Selector)

// WithAlgorithm sets the selection algorithm. The default is fastest.
func WithAlgorithm(a Algorithm) Option {
	return func(s *Selector) { s.algo = a }
}

// WithProbeTimeout bounds each endpoint probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(s *Selector) { s.timeout = d }
}

// NewSelector returns a Selector.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{algo: AlgorithmFastest, timeout: defaultProbeTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select probes urls and returns the best one serving chainID. A single URL
// is still probed so a wrong-chain endpoint is caught before signing.
func (s *Selector) Select(ctx context.Context, chainID int64, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	endpoints := ResultsToEndpoints(Benchmark(ctx, urls, s.timeout), chainID)
	winner, err := Pick(endpoints, s.algo)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
