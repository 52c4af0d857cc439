// Package rpc picks a usable JSON-RPC endpoint for a chain before a direct
// deploy.
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mohsinsiddi/tokenforge/internal/chain"
)

// BenchmarkResult holds the result of a single endpoint probe.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Benchmark probes all urls in parallel. Each probe reads the chain ID and
// pings the latest block; results keep the order of urls.
func Benchmark(ctx context.Context, urls []string, timeout time.Duration) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results[idx] = probe(probeCtx, u)
		}(i, url)
	}

	wg.Wait()
	return results
}

func probe(ctx context.Context, url string) BenchmarkResult {
	r := BenchmarkResult{URL: url}
	c := chain.NewEVMClient(url)
	id, err := c.ChainID(ctx)
	if err != nil {
		r.Err = err
		return r
	}
	r.ChainID = id
	r.Latency, r.BlockNumber, r.Err = c.Ping(ctx)
	return r
}

// ResultsToEndpoints converts benchmark results to picker endpoints. A
// result for a different chain than wantChainID is marked unhealthy; pass 0
// to skip that check.
func ResultsToEndpoints(results []BenchmarkResult, wantChainID int64) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		ep := Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Err:         r.Err,
		}
		if ep.Healthy && wantChainID != 0 && r.ChainID != wantChainID {
			ep.Healthy = false
			ep.Err = fmt.Errorf("%w: endpoint reports chain %d, want %d", ErrChainMismatch, r.ChainID, wantChainID)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints
}
