package state

import (
	"encoding/json"
	"sort"
)

// Section names of the root record.
const (
	SectionWallet = "wallet"
	SectionToken  = "token"
	SectionUI     = "ui"
)

// ApplicationState is the root record. All three sections are always present.
type ApplicationState struct {
	Wallet WalletState `json:"wallet"`
	Token  TokenState  `json:"token"`
	UI     UIState     `json:"ui"`
}

// WalletState describes the connected signing wallet.
type WalletState struct {
	Connected bool         `json:"connected"`
	Address   string       `json:"address,omitempty"`
	Network   *NetworkInfo `json:"network,omitempty"`
}

// TokenState holds the wizard draft and the outcome of the last deploy.
type TokenState struct {
	Data             *TokenDraft   `json:"data,omitempty"`
	DeployInProgress bool          `json:"deployInProgress"`
	DeployResult     *DeployResult `json:"deployResult,omitempty"`
}

// UIState tracks wizard progress.
type UIState struct {
	CurrentSection    string     `json:"currentSection"`
	CompletedSections SectionSet `json:"completedSections"`
	Loading           bool       `json:"loading"`
}

// NetworkInfo is a network descriptor. ChainID is its identity.
type NetworkInfo struct {
	ChainID         int64  `json:"chainId"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Supported       bool   `json:"supported"`
	DeploySupported bool   `json:"deploySupported"`
}

// TokenDraft is the token the wizard is building.
type TokenDraft struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
	Owner       string `json:"owner"`
}

// DeployResult is the outcome of one deploy attempt. Success selects which
// half is populated.
type DeployResult struct {
	Success bool `json:"success"`

	ContractAddress string       `json:"contractAddress,omitempty"`
	TransactionHash string       `json:"transactionHash,omitempty"`
	Network         *NetworkInfo `json:"network,omitempty"`
	GasUsed         string       `json:"gasUsed,omitempty"`
	BlockNumber     string       `json:"blockNumber,omitempty"`

	Kind  string `json:"kind,omitempty"` // error taxonomy, e.g. "DeployApiError"
	Error string `json:"error,omitempty"`
}

// Succeeded builds the success variant.
func Succeeded(address, txHash string, network *NetworkInfo, gasUsed, blockNumber string) *DeployResult {
	return &DeployResult{
		Success:         true,
		ContractAddress: address,
		TransactionHash: txHash,
		Network:         network,
		GasUsed:         gasUsed,
		BlockNumber:     blockNumber,
	}
}

// Failed builds the failure variant.
func Failed(kind, message string) *DeployResult {
	return &DeployResult{Kind: kind, Error: message}
}

// SectionSet is a set of wizard section names. It is stored as a sorted list.
type SectionSet map[string]struct{}

// NewSectionSet returns a set holding names.
func NewSectionSet(names ...string) SectionSet {
	s := make(SectionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s SectionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// List returns the members in sorted order.
func (s SectionSet) List() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Clone copies the set.
func (s SectionSet) Clone() SectionSet {
	return NewSectionSet(s.List()...)
}

func (s SectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *SectionSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSectionSet(names...)
	return nil
}

// Default returns the documented default state.
func Default() ApplicationState {
	return ApplicationState{
		Wallet: defaultWallet(),
		Token:  defaultToken(),
		UI:     defaultUI(),
	}
}

func defaultWallet() WalletState { return WalletState{} }

func defaultToken() TokenState { return TokenState{} }

func defaultUI() UIState {
	return UIState{
		CurrentSection:    SectionWallet,
		CompletedSections: NewSectionSet(),
	}
}

// clone deep-copies the state so callers cannot alias the store's tree.
func (a ApplicationState) clone() ApplicationState {
	out := a
	if a.Wallet.Network != nil {
		n := *a.Wallet.Network
		out.Wallet.Network = &n
	}
	if a.Token.Data != nil {
		d := *a.Token.Data
		out.Token.Data = &d
	}
	if a.Token.DeployResult != nil {
		r := *a.Token.DeployResult
		if r.Network != nil {
			n := *r.Network
			r.Network = &n
		}
		out.Token.DeployResult = &r
	}
	out.UI.CompletedSections = a.UI.CompletedSections.Clone()
	return out
}
