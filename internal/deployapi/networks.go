package deployapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// Network is one entry of the supported-networks list.
type Network struct {
	ChainID         int64  `json:"chainId"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	DeploySupported bool   `json:"deploySupported"`
}

// Info converts the entry into the stored network descriptor.
func (n Network) Info() *state.NetworkInfo {
	return &state.NetworkInfo{
		ChainID:         n.ChainID,
		Name:            n.Name,
		Symbol:          n.Symbol,
		Supported:       true,
		DeploySupported: n.DeploySupported,
	}
}

type networksResponse struct {
	Networks []Network `json:"networks"`
}

// SupportedNetworks returns the deployable networks. The first successful
// answer is cached; forceRefresh always refetches. A failed fetch leaves the
// cache untouched and returns *NetworkFetchError.
func (c *Client) SupportedNetworks(ctx context.Context, forceRefresh bool) ([]Network, error) {
	if !forceRefresh {
		if cached := c.cachedNetworks(); cached != nil {
			return cached, nil
		}
	}

	var resp networksResponse
	if err := c.do(ctx, http.MethodGet, "/networks?deployOnly=true", nil, &resp); err != nil {
		c.lggr.Warnw("Failed to fetch supported networks", "err", err)
		return nil, &NetworkFetchError{Err: err}
	}
	if resp.Networks == nil {
		resp.Networks = []Network{}
	}

	c.mu.Lock()
	c.networks = resp.Networks
	c.mu.Unlock()
	return copyNetworks(resp.Networks), nil
}

// IsNetworkSupported reports whether chainID is in the (cached) list with
// deploy support. Fetch failures report false.
func (c *Client) IsNetworkSupported(ctx context.Context, chainID int64) bool {
	networks, err := c.SupportedNetworks(ctx, false)
	if err != nil {
		return false
	}
	for _, n := range networks {
		if n.ChainID == chainID {
			return n.DeploySupported
		}
	}
	return false
}

// CachedNetwork returns the entry for chainID from the cached list. It never
// fetches; before the first successful fetch it reports false.
func (c *Client) CachedNetwork(chainID int64) (Network, bool) {
	for _, n := range c.cachedNetworks() {
		if n.ChainID == chainID {
			return n, true
		}
	}
	return Network{}, false
}

func (c *Client) cachedNetworks() []Network {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.networks == nil {
		return nil
	}
	return copyNetworks(c.networks)
}

func copyNetworks(in []Network) []Network {
	out := make([]Network, len(in))
	copy(out, in)
	return out
}

// NetworkDetails is the per-network info used for cost estimates.
type NetworkDetails struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	GasPrice Number `json:"gasPrice"` // gwei
	GasLimit Number `json:"gasLimit"`
}

type networkResponse struct {
	Network *NetworkDetails `json:"network"`
}

// NetworkInfo fetches details for one network.
func (c *Client) NetworkInfo(ctx context.Context, chainID int64) (*NetworkDetails, error) {
	if chainID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChainID, chainID)
	}
	var resp networkResponse
	path := "/network/" + strconv.FormatInt(chainID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.Network == nil {
		return nil, fmt.Errorf("GET %s: response has no network", path)
	}
	return resp.Network, nil
}

// Number is a JSON value sent either as a number or as a string such as
// "5" or "5 gwei". Only the leading numeric part is used.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	var text string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	} else {
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		text = text[:i]
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Text is a JSON value sent either as a string or as a number, kept as text.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}
