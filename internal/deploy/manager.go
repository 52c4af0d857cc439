// Package deploy orchestrates a token deployment: one attempt at a time,
// through the deploy API or directly from a local wallet.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// Remote is the part of the deploy API client the manager uses.
type Remote interface {
	IsNetworkSupported(ctx context.Context, chainID int64) bool
	CachedNetwork(chainID int64) (deployapi.Network, bool)
	DeployToken(ctx context.Context, p deployapi.TokenParams) (*deployapi.DeployResponse, error)
}

// DirectRequest is a token to deploy from the local wallet.
type DirectRequest struct {
	Token   state.TokenDraft
	ChainID int64
}

// DirectResult is a contract deployed from the local wallet.
type DirectResult struct {
	Address     string
	TxHash      string
	GasUsed     string
	BlockNumber string
}

// DirectDeployer deploys without the API.
type DirectDeployer interface {
	DeployDirect(ctx context.Context, req DirectRequest) (*DirectResult, error)
}

// DirectDeployerFunc adapts a function to DirectDeployer.
type DirectDeployerFunc func(ctx context.Context, req DirectRequest) (*DirectResult, error)

func (f DirectDeployerFunc) DeployDirect(ctx context.Context, req DirectRequest) (*DirectResult, error) {
	return f(ctx, req)
}

// Request is one deploy. A nil Token fails validation.
type Request struct {
	Token   *state.TokenDraft
	ChainID int64
}

// Manager runs deploy attempts and records their outcome in the store.
type Manager struct {
	store    *state.Store
	remote   Remote
	direct   DirectDeployer
	strategy Strategy
	resolve  func(chainID int64) *state.NetworkInfo
	hook     func(Transition)
	metrics  *Metrics
	lggr     logging.Logger

	mu      sync.Mutex
	phase   Phase
	attempt string
}

// Option configures a Manager.
type Option func(*Manager)

// WithStrategy sets the deploy strategy. Default RemoteWithFallback.
func WithStrategy(s Strategy) Option {
	return func(m *Manager) { m.strategy = s }
}

// WithDirect sets the direct deployer used by DirectOnly and as fallback.
func WithDirect(d DirectDeployer) Option {
	return func(m *Manager) { m.direct = d }
}

// WithNetworkResolver describes chains the API does not list.
func WithNetworkResolver(fn func(chainID int64) *state.NetworkInfo) Option {
	return func(m *Manager) { m.resolve = fn }
}

// WithTransitionHook observes every phase change. It runs on the deploying
// goroutine without the manager lock held.
func WithTransitionHook(fn func(Transition)) Option {
	return func(m *Manager) { m.hook = fn }
}

// WithMetrics replaces the manager's private metrics.
func WithMetrics(mt *Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.lggr = l }
}

// NewManager creates a manager writing to store. remote may be nil only for
// DirectOnly, which in turn needs a direct deployer.
func NewManager(store *state.Store, remote Remote, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:    store,
		remote:   remote,
		strategy: RemoteWithFallback,
		lggr:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if store == nil {
		return nil, errors.New("deploy manager needs a state store")
	}
	if m.strategy != DirectOnly && remote == nil {
		return nil, fmt.Errorf("strategy %s needs a deploy API client", m.strategy)
	}
	if m.strategy == DirectOnly && m.direct == nil {
		return nil, errors.New("strategy direct needs a direct deployer")
	}
	if m.metrics == nil {
		m.metrics = NewMetrics()
	}
	m.lggr = m.lggr.Named("deploy")
	return m, nil
}

// Strategy returns the configured strategy.
func (m *Manager) Strategy() Strategy { return m.strategy }

// Metrics returns the manager's metrics.
func (m *Manager) Metrics() *Metrics { return m.metrics }

// Phase returns the current phase. Terminal phases are transient, so it
// reports Idle, InFlight or Fallback.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// DeployFromStore deploys the draft held at token.data. A chainID of 0 uses
// the connected wallet's network.
func (m *Manager) DeployFromStore(ctx context.Context, chainID int64) (*state.DeployResult, error) {
	snap := m.store.Snapshot()
	if chainID == 0 && snap.Wallet.Network != nil {
		chainID = snap.Wallet.Network.ChainID
	}
	return m.Deploy(ctx, Request{Token: snap.Token.Data, ChainID: chainID})
}

// Deploy runs one attempt to a terminal state and returns the result that
// was written to token.deployResult. Failed deploys are reported through the
// result; the error is non-nil only when another attempt is running, in
// which case nothing is written.
func (m *Manager) Deploy(ctx context.Context, req Request) (*state.DeployResult, error) {
	m.mu.Lock()
	if m.phase.Busy() {
		inProgress := &DeployInProgressError{Attempt: m.attempt, Phase: m.phase}
		m.mu.Unlock()
		m.metrics.rejected.Inc()
		m.lggr.Warnw("Rejected deploy while another attempt runs", "attempt", inProgress.Attempt, "phase", inProgress.Phase)
		return nil, inProgress
	}
	a := &attempt{id: uuid.NewString(), start: time.Now(), phase: InFlight}
	m.phase = InFlight
	m.attempt = a.id
	m.mu.Unlock()

	a.lggr = m.lggr.With("attempt", a.id, "chainId", req.ChainID, "strategy", m.strategy.String())
	m.notify(Transition{Attempt: a.id, From: Idle, To: InFlight})
	m.metrics.attempts.Inc()
	m.write(a, state.PathDeployInProgress, true)
	a.lggr.Infow("Deploy started")

	res, path := m.run(ctx, a, req)
	m.finish(a, res, path)
	return res, nil
}

type attempt struct {
	id    string
	start time.Time
	phase Phase
	lggr  logging.Logger
}

func (m *Manager) run(ctx context.Context, a *attempt, req Request) (*state.DeployResult, string) {
	primary := PathRemote
	if m.strategy == DirectOnly {
		primary = PathDirect
	}

	if err := Validate(req.Token); err != nil {
		return state.Failed(KindValidation, err.Error()), primary
	}
	if req.ChainID <= 0 {
		return state.Failed(KindValidation, (&ValidationError{Field: "chainId", Reason: "must be positive"}).Error()), primary
	}

	if m.strategy == DirectOnly {
		return m.runDirect(ctx, a, req, m.describe(req.ChainID)), PathDirect
	}

	supported := m.remote.IsNetworkSupported(ctx, req.ChainID)
	network := m.describe(req.ChainID)
	if !supported {
		msg := fmt.Sprintf("chain %d is not supported by the deploy API", req.ChainID)
		if m.canFallBack() {
			a.lggr.Infow("Chain not supported remotely, deploying directly")
			return m.fallback(ctx, a, req, network), PathDirect
		}
		a.lggr.Warnw("Deploy failed", "kind", KindNetworkUnsupported, "err", msg)
		return state.Failed(KindNetworkUnsupported, msg), PathRemote
	}

	resp, err := m.remote.DeployToken(ctx, deployapi.TokenParams{
		Name:        strings.TrimSpace(req.Token.Name),
		Symbol:      strings.TrimSpace(req.Token.Symbol),
		Decimals:    req.Token.Decimals,
		TotalSupply: strings.TrimSpace(req.Token.TotalSupply),
		Owner:       req.Token.Owner,
		ChainID:     req.ChainID,
	})
	if err == nil {
		return resp.Result(network), PathRemote
	}

	kind, eligible := classify(err)
	if eligible && m.canFallBack() {
		a.lggr.Warnw("Remote deploy failed, deploying directly", "kind", kind, "err", err)
		return m.fallback(ctx, a, req, network), PathDirect
	}
	a.lggr.Warnw("Deploy failed", "kind", kind, "err", err)
	return state.Failed(kind, err.Error()), PathRemote
}

func (m *Manager) canFallBack() bool {
	return m.strategy == RemoteWithFallback && m.direct != nil
}

func (m *Manager) fallback(ctx context.Context, a *attempt, req Request, network *state.NetworkInfo) *state.DeployResult {
	m.mu.Lock()
	m.phase = Fallback
	m.mu.Unlock()
	m.notify(Transition{Attempt: a.id, From: a.phase, To: Fallback})
	a.phase = Fallback
	m.metrics.fallbacks.Inc()
	return m.runDirect(ctx, a, req, network)
}

func (m *Manager) runDirect(ctx context.Context, a *attempt, req Request, network *state.NetworkInfo) *state.DeployResult {
	out, err := m.direct.DeployDirect(ctx, DirectRequest{Token: *req.Token, ChainID: req.ChainID})
	if err != nil {
		kind := KindDirect
		if errors.Is(err, context.Canceled) {
			kind = KindCancelled
		}
		a.lggr.Warnw("Direct deploy failed", "kind", kind, "err", err)
		return state.Failed(kind, err.Error())
	}
	return state.Succeeded(out.Address, out.TxHash, network, out.GasUsed, out.BlockNumber)
}

// describe builds the network descriptor recorded with a success. It only
// reads the network list already fetched for the support check.
func (m *Manager) describe(chainID int64) *state.NetworkInfo {
	if m.remote != nil {
		if n, ok := m.remote.CachedNetwork(chainID); ok {
			return n.Info()
		}
	}
	if m.resolve != nil {
		if info := m.resolve(chainID); info != nil {
			return info
		}
	}
	return &state.NetworkInfo{ChainID: chainID}
}

// finish records the outcome while the attempt still holds the manager, so
// store listeners reacting to it cannot start an overlapping attempt.
func (m *Manager) finish(a *attempt, res *state.DeployResult, path string) {
	m.write(a, state.PathDeployResult, res)
	m.write(a, state.PathDeployInProgress, false)

	terminal := Failed
	if res.Success {
		terminal = Succeeded
	}
	m.mu.Lock()
	m.phase = Idle
	m.attempt = ""
	m.mu.Unlock()

	m.notify(Transition{Attempt: a.id, From: a.phase, To: terminal})
	m.notify(Transition{Attempt: a.id, From: terminal, To: Idle})

	elapsed := time.Since(a.start)
	m.metrics.observe(path, res.Success, res.Kind, elapsed.Seconds())
	if res.Success {
		a.lggr.Infow("Deploy succeeded", "path", path, "contract", res.ContractAddress,
			"tx", res.TransactionHash, "elapsed", elapsed)
	} else {
		a.lggr.Infow("Deploy finished with failure", "path", path, "kind", res.Kind, "elapsed", elapsed)
	}
}

func (m *Manager) write(a *attempt, p state.Path, v any) {
	if err := m.store.Set(p, v); err != nil {
		a.lggr.Errorw("Failed to record deploy state", "path", p, "err", err)
	}
}

func (m *Manager) notify(t Transition) {
	if m.hook != nil {
		m.hook(t)
	}
}
