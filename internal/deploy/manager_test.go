package deploy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

const owner = "0x1111111111111111111111111111111111111111"

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeRemote struct {
	supported map[int64]bool
	deploy    func(ctx context.Context, p deployapi.TokenParams) (*deployapi.DeployResponse, error)

	mu    sync.Mutex
	calls []deployapi.TokenParams
}

func (f *fakeRemote) IsNetworkSupported(_ context.Context, chainID int64) bool {
	return f.supported[chainID]
}

func (f *fakeRemote) CachedNetwork(chainID int64) (deployapi.Network, bool) {
	ok, listed := f.supported[chainID]
	if !listed {
		return deployapi.Network{}, false
	}
	return deployapi.Network{ChainID: chainID, Name: "Test Chain", Symbol: "TST", DeploySupported: ok}, true
}

func (f *fakeRemote) DeployToken(ctx context.Context, p deployapi.TokenParams) (*deployapi.DeployResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	return f.deploy(ctx, p)
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func okResponse() *deployapi.DeployResponse {
	return &deployapi.DeployResponse{
		Success:         true,
		ContractAddress: "0xfeed",
		TransactionHash: "0xbeef",
		GasUsed:         "761000",
		BlockNumber:     "77",
	}
}

func remoteOK() *fakeRemote {
	return &fakeRemote{
		supported: map[int64]bool{97: true},
		deploy: func(context.Context, deployapi.TokenParams) (*deployapi.DeployResponse, error) {
			return okResponse(), nil
		},
	}
}

func remoteErr(err error) *fakeRemote {
	return &fakeRemote{
		supported: map[int64]bool{97: true},
		deploy: func(context.Context, deployapi.TokenParams) (*deployapi.DeployResponse, error) {
			return nil, err
		},
	}
}

type directSpy struct {
	calls atomic.Int32
	res   *DirectResult
	err   error
}

func (d *directSpy) DeployDirect(_ context.Context, _ DirectRequest) (*DirectResult, error) {
	d.calls.Add(1)
	return d.res, d.err
}

func directOK() *directSpy {
	return &directSpy{res: &DirectResult{Address: "0xabc", TxHash: "0x123"}}
}

type transitions struct {
	mu  sync.Mutex
	got []string
}

func (tr *transitions) hook(t Transition) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.got = append(tr.got, t.From.String()+">"+t.To.String())
}

func (tr *transitions) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.got...)
}

func draft() *state.TokenDraft {
	return &state.TokenDraft{Name: "Forge", Symbol: "FRG", Decimals: 18, TotalSupply: "1000000", Owner: owner}
}

func newStore(t *testing.T) *state.Store {
	return state.New(state.WithLogger(logging.Test(t)))
}

func newManager(t *testing.T, store *state.Store, remote Remote, opts ...Option) (*Manager, *transitions) {
	t.Helper()
	tr := &transitions{}
	opts = append([]Option{WithLogger(logging.Test(t)), WithTransitionHook(tr.hook)}, opts...)
	m, err := NewManager(store, remote, opts...)
	require.NoError(t, err)
	return m, tr
}

func storedResult(t *testing.T, s *state.Store) *state.DeployResult {
	t.Helper()
	v, ok := s.Get(state.PathDeployResult)
	require.True(t, ok, "deploy result should be stored")
	return v.(*state.DeployResult)
}

func inProgress(s *state.Store) bool {
	v, _ := s.Get(state.PathDeployInProgress)
	b, _ := v.(bool)
	return b
}

// apiServer fakes the deploy API with chain 97 listed.
func apiServer(t *testing.T, deploy http.HandlerFunc) *deployapi.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/networks", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"networks":[{"chainId":97,"name":"BSC Testnet","symbol":"tBNB","deploySupported":true}]}`)
	})
	mux.HandleFunc("POST /deploy-token", deploy)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return deployapi.NewClient(srv.URL, deployapi.WithTimeout(50*time.Millisecond), deployapi.WithLogger(logging.Test(t)))
}

// ---------------------------------------------------------------------------
// remote path
// ---------------------------------------------------------------------------

func TestRemoteSuccess(t *testing.T) {
	store := newStore(t)
	remote := remoteOK()
	m, tr := newManager(t, store, remote)

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.True(t, res.Success)

	stored := storedResult(t, store)
	assert.Equal(t, res, stored)
	assert.Equal(t, "0xfeed", stored.ContractAddress)
	assert.Equal(t, "0xbeef", stored.TransactionHash)
	assert.Equal(t, "761000", stored.GasUsed)
	assert.Equal(t, "77", stored.BlockNumber)
	require.NotNil(t, stored.Network)
	assert.Equal(t, int64(97), stored.Network.ChainID)
	assert.Equal(t, "TST", stored.Network.Symbol)
	assert.False(t, inProgress(store))

	assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>SUCCEEDED", "SUCCEEDED>IDLE"}, tr.list())
	assert.Equal(t, Idle, m.Phase())

	require.Len(t, remote.calls, 1)
	assert.Equal(t, deployapi.TokenParams{
		Name: "Forge", Symbol: "FRG", Decimals: 18, TotalSupply: "1000000", Owner: owner, ChainID: 97,
	}, remote.calls[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.attempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.outcomes.WithLabelValues(PathRemote, "success", "")))
}

func TestDeployInProgressSetWhileInFlight(t *testing.T) {
	store := newStore(t)
	var seen bool
	remote := remoteOK()
	remote.deploy = func(context.Context, deployapi.TokenParams) (*deployapi.DeployResponse, error) {
		seen = inProgress(store)
		return okResponse(), nil
	}
	m, _ := newManager(t, store, remote)

	_, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.True(t, seen, "deployInProgress should be true during the remote call")
	assert.False(t, inProgress(store))
}

func TestExactlyOneResultPerAttempt(t *testing.T) {
	store := newStore(t)
	var writes atomic.Int32
	store.SubscribeFunc(state.PathDeployResult, func(any, any, state.Path) { writes.Add(1) })

	m, _ := newManager(t, store, remoteErr(errors.New("connection reset")), WithDirect(directOK()))

	_, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.Equal(t, int32(1), writes.Load())

	_, err = m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.Equal(t, int32(2), writes.Load())
}

func TestTimeoutFallsBackToDirect(t *testing.T) {
	client := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	store := newStore(t)
	direct := directOK()
	m, tr := newManager(t, store, client, WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)

	assert.Equal(t, int32(1), direct.calls.Load())
	assert.True(t, res.Success)
	stored := storedResult(t, store)
	assert.True(t, stored.Success)
	assert.Equal(t, "0xabc", stored.ContractAddress)
	assert.Equal(t, "0x123", stored.TransactionHash)
	assert.Equal(t, "BSC Testnet", stored.Network.Name)
	assert.False(t, inProgress(store))

	assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>FALLBACK", "FALLBACK>SUCCEEDED", "SUCCEEDED>IDLE"}, tr.list())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.outcomes.WithLabelValues(PathDirect, "success", "")))
}

func TestHangingNetworkListFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/networks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := deployapi.NewClient(srv.URL, deployapi.WithTimeout(50*time.Millisecond), deployapi.WithLogger(logging.Test(t)))

	store := newStore(t)
	direct := directOK()
	m, _ := newManager(t, store, client, WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(1), direct.calls.Load())
	assert.Equal(t, int32(1), hits.Load(), "one network list fetch per attempt")
	assert.Equal(t, int64(97), res.Network.ChainID)
}

func TestBusinessErrorDoesNotFallBack(t *testing.T) {
	client := apiServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success":false,"error":"invalid symbol"}`)
	})
	store := newStore(t)
	direct := directOK()
	m, tr := newManager(t, store, client, WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)

	assert.Zero(t, direct.calls.Load())
	assert.False(t, res.Success)
	stored := storedResult(t, store)
	assert.Equal(t, "invalid symbol", stored.Error)
	assert.Equal(t, KindAPI, stored.Kind)
	assert.False(t, inProgress(store))
	assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>FAILED", "FAILED>IDLE"}, tr.list())
}

func TestUndecodedHTTPErrorFallsBack(t *testing.T) {
	client := apiServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	store := newStore(t)
	direct := directOK()
	m, _ := newManager(t, store, client, WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.Equal(t, int32(1), direct.calls.Load())
	assert.True(t, res.Success)
}

func TestRemoteErrorWithoutDirectKeepsOriginalError(t *testing.T) {
	cases := []struct {
		name     string
		strategy Strategy
		direct   DirectDeployer
	}{
		{"remote only", RemoteOnly, directOK()},
		{"no direct deployer", RemoteWithFallback, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			opts := []Option{WithStrategy(tc.strategy)}
			if tc.direct != nil {
				opts = append(opts, WithDirect(tc.direct))
			}
			m, tr := newManager(t, store, remoteErr(&deployapi.DeployTimeoutError{Timeout: time.Minute}), opts...)

			res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, KindTimeout, res.Kind)
			assert.Equal(t, "deploy request timed out after 1m0s", res.Error)
			assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>FAILED", "FAILED>IDLE"}, tr.list())
			assert.False(t, inProgress(store))
		})
	}
}

func TestCancelledRemoteDoesNotFallBack(t *testing.T) {
	store := newStore(t)
	direct := directOK()
	m, _ := newManager(t, store, remoteErr(fmt.Errorf("POST /deploy-token: %w", context.Canceled)), WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.Equal(t, KindCancelled, res.Kind)
	assert.Zero(t, direct.calls.Load())
}

func TestDirectFailureAfterFallback(t *testing.T) {
	store := newStore(t)
	direct := &directSpy{err: errors.New("wallet is on chain 1, want 97")}
	m, tr := newManager(t, store, remoteErr(errors.New("dial tcp: connection refused")), WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindDirect, res.Kind)
	assert.Equal(t, "wallet is on chain 1, want 97", res.Error)
	assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>FALLBACK", "FALLBACK>FAILED", "FAILED>IDLE"}, tr.list())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.outcomes.WithLabelValues(PathDirect, "failure", KindDirect)))
}

// ---------------------------------------------------------------------------
// network support
// ---------------------------------------------------------------------------

func TestUnsupportedChainFallsBackDirectly(t *testing.T) {
	store := newStore(t)
	remote := remoteOK()
	direct := directOK()
	m, tr := newManager(t, store, remote, WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 999999})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, remote.callCount())
	assert.Equal(t, int32(1), direct.calls.Load())
	assert.Equal(t, int64(999999), res.Network.ChainID)
	assert.Contains(t, tr.list(), "IN_FLIGHT>FALLBACK")
}

func TestUnsupportedChainRemoteOnly(t *testing.T) {
	store := newStore(t)
	remote := remoteOK()
	m, _ := newManager(t, store, remote, WithStrategy(RemoteOnly))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 999999})
	require.NoError(t, err)
	assert.Equal(t, KindNetworkUnsupported, res.Kind)
	assert.Contains(t, res.Error, "999999")
	assert.Zero(t, remote.callCount())
}

func TestNetworkResolverDescribesUnlistedChain(t *testing.T) {
	store := newStore(t)
	resolver := func(id int64) *state.NetworkInfo {
		return &state.NetworkInfo{ChainID: id, Name: "Sepolia", Symbol: "ETH"}
	}
	m, _ := newManager(t, store, remoteOK(), WithDirect(directOK()), WithNetworkResolver(resolver))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 11155111})
	require.NoError(t, err)
	assert.Equal(t, "Sepolia", res.Network.Name)
}

// ---------------------------------------------------------------------------
// direct only
// ---------------------------------------------------------------------------

func TestDirectOnly(t *testing.T) {
	store := newStore(t)
	direct := directOK()
	m, tr := newManager(t, store, nil, WithStrategy(DirectOnly), WithDirect(direct))

	res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "0xabc", res.ContractAddress)
	assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>SUCCEEDED", "SUCCEEDED>IDLE"}, tr.list())
	assert.Zero(t, testutil.ToFloat64(m.metrics.fallbacks))
}

// ---------------------------------------------------------------------------
// single flight
// ---------------------------------------------------------------------------

func TestConcurrentDeployRejected(t *testing.T) {
	store := newStore(t)
	started := make(chan struct{})
	release := make(chan struct{})
	remote := remoteOK()
	remote.deploy = func(context.Context, deployapi.TokenParams) (*deployapi.DeployResponse, error) {
		close(started)
		<-release
		return okResponse(), nil
	}
	m, _ := newManager(t, store, remote)

	type outcome struct {
		res *state.DeployResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
		done <- outcome{res, err}
	}()
	<-started
	assert.Equal(t, InFlight, m.Phase())

	var writes atomic.Int32
	unsub := store.SubscribeFunc(state.PathToken, func(any, any, state.Path) { writes.Add(1) })

	_, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.ErrorIs(t, err, ErrDeployInProgress)
	var busy *DeployInProgressError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, InFlight, busy.Phase)
	assert.NotEmpty(t, busy.Attempt)
	assert.Zero(t, writes.Load(), "a rejected call must not touch the store")
	unsub()

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.True(t, first.res.Success)
	assert.Equal(t, 1, remote.callCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.rejected))
	assert.Equal(t, Idle, m.Phase())
}

func TestRejectedDuringFallback(t *testing.T) {
	store := newStore(t)
	started := make(chan struct{})
	release := make(chan struct{})
	direct := DirectDeployerFunc(func(context.Context, DirectRequest) (*DirectResult, error) {
		close(started)
		<-release
		return &DirectResult{Address: "0xabc", TxHash: "0x123"}, nil
	})
	m, _ := newManager(t, store, remoteErr(errors.New("eof")), WithDirect(direct))

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97}) //nolint:errcheck
	}()
	<-started

	_, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	var busy *DeployInProgressError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, Fallback, busy.Phase)

	close(release)
	<-done
}

func TestManagerReusableAfterTerminal(t *testing.T) {
	store := newStore(t)
	m, _ := newManager(t, store, remoteOK())

	for range 3 {
		res, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
		require.NoError(t, err)
		assert.True(t, res.Success)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.metrics.attempts))
}

// ---------------------------------------------------------------------------
// validation
// ---------------------------------------------------------------------------

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(d *state.TokenDraft) *state.TokenDraft
		chainID int64
		field   string
	}{
		{"no draft", func(*state.TokenDraft) *state.TokenDraft { return nil }, 97, "token"},
		{"empty name", func(d *state.TokenDraft) *state.TokenDraft { d.Name = " "; return d }, 97, "name"},
		{"empty symbol", func(d *state.TokenDraft) *state.TokenDraft { d.Symbol = ""; return d }, 97, "symbol"},
		{"too many decimals", func(d *state.TokenDraft) *state.TokenDraft { d.Decimals = 19; return d }, 97, "decimals"},
		{"non-numeric supply", func(d *state.TokenDraft) *state.TokenDraft { d.TotalSupply = "lots"; return d }, 97, "totalSupply"},
		{"zero supply", func(d *state.TokenDraft) *state.TokenDraft { d.TotalSupply = "0"; return d }, 97, "totalSupply"},
		{"fractional supply", func(d *state.TokenDraft) *state.TokenDraft { d.TotalSupply = "1.5"; return d }, 97, "totalSupply"},
		{"overflowing supply", func(d *state.TokenDraft) *state.TokenDraft { d.TotalSupply = "1" + strings.Repeat("0", 70); return d }, 97, "totalSupply"},
		{"bad owner", func(d *state.TokenDraft) *state.TokenDraft { d.Owner = "bob"; return d }, 97, "owner"},
		{"no chain", func(d *state.TokenDraft) *state.TokenDraft { return d }, 0, "chainId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			remote := remoteOK()
			m, tr := newManager(t, store, remote, WithDirect(directOK()))

			res, err := m.Deploy(context.Background(), Request{Token: tc.mutate(draft()), ChainID: tc.chainID})
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, KindValidation, res.Kind)
			assert.Contains(t, res.Error, tc.field)
			assert.Zero(t, remote.callCount())
			assert.Equal(t, []string{"IDLE>IN_FLIGHT", "IN_FLIGHT>FAILED", "FAILED>IDLE"}, tr.list())
			assert.False(t, inProgress(store))
		})
	}
}

func TestScaledSupply(t *testing.T) {
	n, err := ScaledSupply("1000", 2)
	require.NoError(t, err)
	assert.Equal(t, "100000", n.Dec())

	n, err = ScaledSupply(" 21000000 ", 18)
	require.NoError(t, err)
	assert.Equal(t, "21000000"+strings.Repeat("0", 18), n.Dec())

	_, err = ScaledSupply("-5", 0)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "totalSupply", ve.Field)
}

// ---------------------------------------------------------------------------
// store draft
// ---------------------------------------------------------------------------

func TestDeployFromStore(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set(state.PathTokenData, draft()))
	require.NoError(t, store.Set(state.PathWalletNetwork, &state.NetworkInfo{ChainID: 97}))
	remote := remoteOK()
	m, _ := newManager(t, store, remote)

	res, err := m.DeployFromStore(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, remote.calls, 1)
	assert.Equal(t, int64(97), remote.calls[0].ChainID)
	assert.Equal(t, "FRG", remote.calls[0].Symbol)
}

func TestDeployFromEmptyStore(t *testing.T) {
	store := newStore(t)
	m, _ := newManager(t, store, remoteOK())

	res, err := m.DeployFromStore(context.Background(), 97)
	require.NoError(t, err)
	assert.Equal(t, KindValidation, res.Kind)
}

// ---------------------------------------------------------------------------
// construction, strategy, metrics
// ---------------------------------------------------------------------------

func TestNewManagerRequirements(t *testing.T) {
	store := newStore(t)

	_, err := NewManager(nil, remoteOK())
	assert.Error(t, err)

	_, err = NewManager(store, nil)
	assert.Error(t, err, "remote strategies need a client")

	_, err = NewManager(store, nil, WithStrategy(DirectOnly))
	assert.Error(t, err, "direct strategy needs a deployer")

	m, err := NewManager(store, nil, WithStrategy(DirectOnly), WithDirect(directOK()))
	require.NoError(t, err)
	assert.Equal(t, DirectOnly, m.Strategy())
	assert.Equal(t, Idle, m.Phase())
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"remote":          RemoteOnly,
		"remote-fallback": RemoteWithFallback,
		"":                RemoteWithFallback,
		"direct":          DirectOnly,
	}
	for in, want := range cases {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if in != "" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseStrategy("manual")
	assert.Error(t, err)
}

func TestPhaseStrings(t *testing.T) {
	assert.Equal(t, "IDLE", Idle.String())
	assert.Equal(t, "IN_FLIGHT", InFlight.String())
	assert.Equal(t, "FALLBACK", Fallback.String())
	assert.Equal(t, "SUCCEEDED", Succeeded.String())
	assert.Equal(t, "FAILED", Failed.String())
	assert.True(t, InFlight.Busy())
	assert.True(t, Fallback.Busy())
	assert.False(t, Succeeded.Busy())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err      error
		kind     string
		fallback bool
	}{
		{&deployapi.DeployTimeoutError{Timeout: time.Second}, KindTimeout, true},
		{&deployapi.DeployAPIError{Status: 400, Message: "bad", Decoded: true}, KindAPI, false},
		{&deployapi.DeployAPIError{Status: 502, Message: "HTTP 502: Bad Gateway"}, KindAPI, true},
		{errors.New("dial tcp: refused"), KindNetwork, true},
		{fmt.Errorf("x: %w", context.Canceled), KindCancelled, false},
	}
	for _, tc := range cases {
		kind, fb := classify(tc.err)
		assert.Equal(t, tc.kind, kind, tc.err.Error())
		assert.Equal(t, tc.fallback, fb, tc.err.Error())
	}
}

func TestMetricsTextfile(t *testing.T) {
	store := newStore(t)
	m, _ := newManager(t, store, remoteOK())
	_, err := m.Deploy(context.Background(), Request{Token: draft(), ChainID: 97})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "deploy.prom")
	require.NoError(t, m.Metrics().WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tokenforge_deploy_attempts_total 1")
	assert.Contains(t, string(data), `tokenforge_deploy_outcomes_total{kind="",outcome="success",path="remote"} 1`)
}
