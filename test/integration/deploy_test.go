package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenforge/internal/chain"
	"github.com/Mohsinsiddi/tokenforge/internal/deploy"
	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
	"github.com/Mohsinsiddi/tokenforge/internal/direct"
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
	"github.com/Mohsinsiddi/tokenforge/internal/wallet"
	"github.com/Mohsinsiddi/tokenforge/test/fixtures"
)

const (
	owner        = "0x1111111111111111111111111111111111111111"
	nodeContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// mockRPCServer mimics an EVM node with chain ID 97 that mines every raw
// transaction it receives in block 16.
func mockRPCServer(t *testing.T) (*httptest.Server, func() []*types.Transaction) {
	t.Helper()
	var (
		mu   sync.Mutex
		sent []*types.Transaction
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		var result any
		switch req.Method {
		case "eth_chainId":
			result = "0x61"
		case "eth_gasPrice":
			result = "0x3b9aca00"
		case "eth_getTransactionCount":
			result = "0x2"
		case "eth_estimateGas":
			result = "0x100000"
		case "eth_sendRawTransaction":
			var raw string
			json.Unmarshal(req.Params[0], &raw) //nolint:errcheck
			data := hexutil.MustDecode(raw)
			tx := new(types.Transaction)
			if err := tx.UnmarshalBinary(data); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mu.Lock()
			sent = append(sent, tx)
			mu.Unlock()
			result = crypto.Keccak256Hash(data).Hex()
		case "eth_getTransactionReceipt":
			var hash string
			json.Unmarshal(req.Params[0], &hash) //nolint:errcheck
			result = map[string]any{
				"transactionHash": hash,
				"status":          "0x1",
				"blockNumber":     "0x10",
				"gasUsed":         "0xb9a0c",
				"contractAddress": nodeContract,
			}
		default:
			http.Error(w, "method not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []*types.Transaction {
		mu.Lock()
		defer mu.Unlock()
		return append([]*types.Transaction(nil), sent...)
	}
}

// slowAPI lists chain 97 but never answers a deploy within the client timeout.
func slowAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /networks", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"networks": []map[string]any{
			{"chainId": 97, "name": "BSC Testnet", "symbol": "tBNB", "deploySupported": true},
		}})
	})
	mux.HandleFunc("POST /deploy-token", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T, apiURL, rpcURL string) (*deploy.Manager, *state.Store, *[]deploy.Transition) {
	t.Helper()
	lggr := logging.Test(t)
	store := state.New(state.WithStorage(state.NewFileStorage(t.TempDir())), state.WithLogger(lggr))

	wallets := wallet.NewManager(wallet.WithInMemoryStore())
	_, _, err := wallets.Generate("deployer")
	require.NoError(t, err)
	signer, err := wallets.Signer("deployer")
	require.NoError(t, err)

	art, err := direct.ParseArtifact(fixtures.LoadArtifact(t, "ForgeToken.json"))
	require.NoError(t, err)

	provider := direct.NewLocalWallet(signer, chain.NewEVMClient(rpcURL, chain.WithPollInterval(10*time.Millisecond)),
		direct.WithLocalLogger(lggr))
	deployer := direct.NewDeployer(provider, art, direct.WithStore(store), direct.WithLogger(lggr))

	client := deployapi.NewClient(apiURL, deployapi.WithTimeout(150*time.Millisecond), deployapi.WithLogger(lggr))

	var (
		mu          sync.Mutex
		transitions []deploy.Transition
	)
	mgr, err := deploy.NewManager(store, client,
		deploy.WithDirect(deployer),
		deploy.WithLogger(lggr),
		deploy.WithTransitionHook(func(tr deploy.Transition) {
			mu.Lock()
			transitions = append(transitions, tr)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)
	return mgr, store, &transitions
}

func forgeDraft() *state.TokenDraft {
	return &state.TokenDraft{Name: "Forge", Symbol: "FRG", Decimals: 18, TotalSupply: "1000000", Owner: owner}
}

func TestRemoteTimeoutFallsBackToLocalWallet(t *testing.T) {
	api := slowAPI(t)
	rpc, sent := mockRPCServer(t)
	mgr, store, transitions := setup(t, api.URL, rpc.URL)

	require.NoError(t, store.Set(state.PathTokenData, forgeDraft()))

	var inProgress []bool
	unsub := store.SubscribeFunc(state.PathDeployInProgress, func(v, _ any, _ state.Path) {
		inProgress = append(inProgress, v.(bool))
	})
	defer unsub()

	res, err := mgr.DeployFromStore(context.Background(), 97)
	require.NoError(t, err)
	require.True(t, res.Success, "deploy failed: %s %s", res.Kind, res.Error)
	assert.Equal(t, nodeContract, res.ContractAddress)
	assert.Equal(t, "760332", res.GasUsed)
	assert.Equal(t, "16", res.BlockNumber)
	require.NotNil(t, res.Network)
	assert.Equal(t, "BSC Testnet", res.Network.Name)

	txs := sent()
	require.Len(t, txs, 1)
	assert.Nil(t, txs[0].To())
	assert.Equal(t, uint64(2), txs[0].Nonce())

	var phases []deploy.Phase
	for _, tr := range *transitions {
		phases = append(phases, tr.To)
	}
	assert.Equal(t, []deploy.Phase{deploy.InFlight, deploy.Fallback, deploy.Succeeded, deploy.Idle}, phases)
	assert.Equal(t, []bool{true, false}, inProgress)

	snap := store.Snapshot()
	assert.False(t, snap.Token.DeployInProgress)
	assert.Equal(t, res, snap.Token.DeployResult)
	// The direct path connects the local wallet.
	assert.True(t, snap.Wallet.Connected)
	require.NotNil(t, snap.Wallet.Network)
	assert.Equal(t, int64(97), snap.Wallet.Network.ChainID)
}

func TestUnreachableAPIFallsBack(t *testing.T) {
	rpc, sent := mockRPCServer(t)
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	mgr, store, _ := setup(t, closed.URL, rpc.URL)

	require.NoError(t, store.Set(state.PathTokenData, forgeDraft()))
	res, err := mgr.DeployFromStore(context.Background(), 97)
	require.NoError(t, err)
	require.True(t, res.Success, "deploy failed: %s %s", res.Kind, res.Error)
	assert.Len(t, sent(), 1)
	// Without a network list the descriptor only carries the chain ID.
	require.NotNil(t, res.Network)
	assert.Equal(t, int64(97), res.Network.ChainID)
}

func TestWrongChainFailsDirectDeploy(t *testing.T) {
	api := slowAPI(t)
	rpc, sent := mockRPCServer(t)
	mgr, store, _ := setup(t, api.URL, rpc.URL)

	draft := forgeDraft()
	require.NoError(t, store.Set(state.PathTokenData, draft))
	res, err := mgr.DeployFromStore(context.Background(), 56)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, deploy.KindDirect, res.Kind)
	assert.Contains(t, res.Error, "connected to 97")
	assert.Empty(t, sent())
}
