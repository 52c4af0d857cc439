package deployapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

const (
	defaultGasUsed     = "800000"
	defaultBlockNumber = "N/A"
)

// TokenParams describes the token to deploy remotely.
type TokenParams struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply string // whole tokens, decimal
	Owner       string
	ChainID     int64
}

type deployRequest struct {
	TokenName          string `json:"tokenName"`
	TokenSymbol        string `json:"tokenSymbol"`
	Decimals           uint8  `json:"decimals"`
	TotalSupply        string `json:"totalSupply"`
	OwnerAddress       string `json:"ownerAddress"`
	ChainID            int64  `json:"chainId"`
	DeployerPrivateKey string `json:"deployerPrivateKey"`
}

// DeployResponse is the success envelope of POST /deploy-token.
type DeployResponse struct {
	Success         bool       `json:"success"`
	ContractAddress string     `json:"contractAddress"`
	TransactionHash string     `json:"transactionHash"`
	Network         NetworkRef `json:"network"`
	GasUsed         Text       `json:"gasUsed"`
	BlockNumber     Text       `json:"blockNumber"`
	Error           string     `json:"error,omitempty"`
}

// NetworkRef is the network descriptor of a deploy response. The API sends
// either a bare name or an object.
type NetworkRef struct {
	ChainID int64  `json:"chainId,omitempty"`
	Name    string `json:"name,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}

func (n *NetworkRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = NetworkRef{}
		return nil
	case len(data) > 0 && data[0] == '"':
		*n = NetworkRef{}
		return json.Unmarshal(data, &n.Name)
	}
	type plain NetworkRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = NetworkRef(p)
	return nil
}

// DeployToken asks the API to deploy the token, paying with a freshly
// generated disposable key. Errors are *DeployTimeoutError when the client
// timeout is exceeded, *DeployAPIError for error answers, or a wrapped
// transport error.
func (c *Client) DeployToken(ctx context.Context, p TokenParams) (*DeployResponse, error) {
	key, err := c.keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating deployer key: %w", err)
	}

	req := deployRequest{
		TokenName:          p.Name,
		TokenSymbol:        p.Symbol,
		Decimals:           p.Decimals,
		TotalSupply:        p.TotalSupply,
		OwnerAddress:       p.Owner,
		ChainID:            p.ChainID,
		DeployerPrivateKey: key.PrivateKeyHex(),
	}

	c.lggr.Infow("Requesting remote deploy",
		"chainId", p.ChainID, "symbol", p.Symbol, "deployer", key.Address.Hex())

	var resp DeployResponse
	err = c.do(ctx, http.MethodPost, "/deploy-token", req, &resp)
	if err != nil {
		var httpErr *HTTPError
		switch {
		case errors.Is(err, errTimeout):
			c.lggr.Warnw("Deploy request timed out", "timeout", c.timeout)
			return nil, &DeployTimeoutError{Timeout: c.timeout}
		case errors.As(err, &httpErr):
			c.lggr.Warnw("Deploy request rejected", "status", httpErr.Status, "err", httpErr.Message)
			return nil, &DeployAPIError{Status: httpErr.Status, Message: httpErr.Message, Decoded: httpErr.Decoded}
		default:
			c.lggr.Warnw("Deploy request failed", "err", err)
			return nil, fmt.Errorf("POST /deploy-token: %w", err)
		}
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "deploy failed"
		}
		return nil, &DeployAPIError{Status: http.StatusOK, Message: msg, Decoded: true}
	}

	if resp.GasUsed == "" {
		resp.GasUsed = defaultGasUsed
	}
	if resp.BlockNumber == "" {
		resp.BlockNumber = defaultBlockNumber
	}
	c.lggr.Infow("Remote deploy succeeded",
		"contract", resp.ContractAddress, "tx", resp.TransactionHash)
	return &resp, nil
}

// Result converts the envelope into the stored success record. fallback
// fills the network descriptor fields the response left out.
func (r *DeployResponse) Result(fallback *state.NetworkInfo) *state.DeployResult {
	var network *state.NetworkInfo
	if fallback != nil {
		n := *fallback
		network = &n
	}
	if r.Network.Name != "" || r.Network.ChainID != 0 {
		if network == nil {
			network = &state.NetworkInfo{}
		}
		if r.Network.ChainID != 0 {
			network.ChainID = r.Network.ChainID
		}
		if r.Network.Name != "" {
			network.Name = r.Network.Name
		}
		if r.Network.Symbol != "" {
			network.Symbol = r.Network.Symbol
		}
	}
	return state.Succeeded(r.ContractAddress, r.TransactionHash, network,
		string(r.GasUsed), string(r.BlockNumber))
}
