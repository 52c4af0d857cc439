package chain

import (
	"errors"
	"sort"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds the metadata tokenforge needs for a single EVM network.
type Chain struct {
	ChainID        int64    `json:"chain_id"`
	Name           string   `json:"name"` // slug, e.g. "bsc-testnet"
	DisplayName    string   `json:"display_name"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
	Testnet        bool     `json:"testnet"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates and returns the registry of known deploy targets.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain ordered by chain ID.
func (r *Registry) All() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// GetByName finds a chain by its slug name (e.g. "bsc", "ethereum").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// PrimaryRPC returns the first public RPC endpoint, or "".
func (c *Chain) PrimaryRPC() string {
	if len(c.RPCs) == 0 {
		return ""
	}
	return c.RPCs[0]
}

// TxURL returns the explorer link for a transaction hash.
func (c *Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/tx/" + hash
}

// AddressURL returns the explorer link for an address.
func (c *Chain) AddressURL(addr string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/address/" + addr
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			ChainID: 1, Name: "ethereum", DisplayName: "Ethereum Mainnet", NativeCurrency: "ETH",
			RPCs:     []string{"https://rpc.ankr.com/eth", "https://ethereum-rpc.publicnode.com"},
			Explorer: "https://etherscan.io",
		},
		{
			ChainID: 56, Name: "bsc", DisplayName: "BNB Smart Chain Mainnet", NativeCurrency: "BNB",
			RPCs:     []string{"https://bsc-dataseed.binance.org"},
			Explorer: "https://bscscan.com",
		},
		{
			ChainID: 97, Name: "bsc-testnet", DisplayName: "BNB Smart Chain Testnet", NativeCurrency: "tBNB",
			RPCs:     []string{"https://data-seed-prebsc-1-s1.binance.org:8545"},
			Explorer: "https://testnet.bscscan.com",
			Testnet:  true,
		},
		{
			ChainID: 137, Name: "polygon", DisplayName: "Polygon Mainnet", NativeCurrency: "MATIC",
			RPCs:     []string{"https://polygon-rpc.com"},
			Explorer: "https://polygonscan.com",
		},
		{
			ChainID: 250, Name: "fantom", DisplayName: "Fantom Opera", NativeCurrency: "FTM",
			RPCs:     []string{"https://rpc.ftm.tools"},
			Explorer: "https://ftmscan.com",
		},
		{
			ChainID: 8453, Name: "base", DisplayName: "Base", NativeCurrency: "ETH",
			RPCs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			Explorer: "https://basescan.org",
		},
		{
			ChainID: 43114, Name: "avalanche", DisplayName: "Avalanche C-Chain", NativeCurrency: "AVAX",
			RPCs:     []string{"https://api.avax.network/ext/bc/C/rpc"},
			Explorer: "https://snowtrace.io",
		},
		{
			ChainID: 84532, Name: "base-sepolia", DisplayName: "Base Sepolia", NativeCurrency: "ETH",
			RPCs:     []string{"https://sepolia.base.org"},
			Explorer: "https://sepolia.basescan.org",
			Testnet:  true,
		},
		{
			ChainID: 11155111, Name: "sepolia", DisplayName: "Sepolia", NativeCurrency: "ETH",
			RPCs:     []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			Explorer: "https://sepolia.etherscan.io",
			Testnet:  true,
		},
	}
}
