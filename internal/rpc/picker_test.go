package rpc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenforge/internal/rpc"
)

func healthy(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: true}
}

func down(url string) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Err: errors.New("connection refused")}
}

func TestPickSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://slow.rpc", 200*time.Millisecond, 100),
		healthy("http://fast.rpc", 30*time.Millisecond, 100),
		healthy("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.Pick(endpoints, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://fresh.rpc", 50*time.Millisecond, 1000),
		healthy("http://stale.rpc", 10*time.Millisecond, 990), // 10 blocks behind
	}

	winner, err := rpc.Pick(endpoints, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickIgnoresUnhealthyBlockHeight(t *testing.T) {
	dead := down("http://dead.rpc")
	dead.BlockNumber = 5000
	endpoints := []rpc.Endpoint{dead, healthy("http://ok.rpc", 40*time.Millisecond, 1000)}

	winner, err := rpc.Pick(endpoints, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://ok.rpc", winner.URL)
}

func TestPickSubMillisecondLatency(t *testing.T) {
	endpoints := []rpc.Endpoint{
		healthy("http://local.rpc", 300*time.Microsecond, 100),
		healthy("http://remote.rpc", 20*time.Millisecond, 100),
	}

	winner, err := rpc.Pick(endpoints, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://local.rpc", winner.URL)
}

func TestPickFailoverKeepsOrder(t *testing.T) {
	endpoints := []rpc.Endpoint{
		down("http://primary.rpc"),
		healthy("http://secondary.rpc", 90*time.Millisecond, 100),
		healthy("http://tertiary.rpc", 10*time.Millisecond, 100),
	}

	winner, err := rpc.Pick(endpoints, rpc.AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, "http://secondary.rpc", winner.URL)
}

func TestPickNoHealthy(t *testing.T) {
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmFailover} {
		t.Run(string(algo), func(t *testing.T) {
			_, err := rpc.Pick([]rpc.Endpoint{down("http://a.rpc"), down("http://b.rpc")}, algo)
			assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
			assert.Contains(t, err.Error(), "connection refused")

			_, err = rpc.Pick(nil, algo)
			assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
		})
	}
}
