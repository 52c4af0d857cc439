package state

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownPath is returned for a dotted path outside the state schema.
	ErrUnknownPath = errors.New("unknown state path")
	// ErrTypeMismatch is returned when a value does not fit the path's field.
	ErrTypeMismatch = errors.New("value type does not match state path")
	// ErrUnknownSection is returned by ResetSection for anything other than wallet, token or ui.
	ErrUnknownSection = errors.New("unknown state section")
)

// Path addresses one field of ApplicationState. Only the constants below are valid.
type Path string

const (
	PathWallet          Path = "wallet"
	PathWalletConnected Path = "wallet.connected"
	PathWalletAddress   Path = "wallet.address"
	PathWalletNetwork   Path = "wallet.network"

	PathToken            Path = "token"
	PathTokenData        Path = "token.data"
	PathTokenName        Path = "token.data.name"
	PathTokenSymbol      Path = "token.data.symbol"
	PathTokenDecimals    Path = "token.data.decimals"
	PathTokenTotalSupply Path = "token.data.totalSupply"
	PathTokenOwner       Path = "token.data.owner"
	PathDeployInProgress Path = "token.deployInProgress"
	PathDeployResult     Path = "token.deployResult"

	PathUI                Path = "ui"
	PathCurrentSection    Path = "ui.currentSection"
	PathCompletedSections Path = "ui.completedSections"
	PathLoading           Path = "ui.loading"
)

// field maps a path onto the nested record.
type field struct {
	get func(*ApplicationState) (any, bool)
	set func(*ApplicationState, any) error
}

var fields = map[Path]field{
	PathWallet: {
		get: func(s *ApplicationState) (any, bool) { return s.clone().Wallet, true },
		set: func(s *ApplicationState, v any) error {
			w, ok := v.(WalletState)
			if !ok {
				return mismatch(PathWallet, v)
			}
			if w.Network != nil {
				n := *w.Network
				w.Network = &n
			}
			s.Wallet = w
			return nil
		},
	},
	PathWalletConnected: boolField(func(s *ApplicationState) *bool { return &s.Wallet.Connected }, PathWalletConnected),
	PathWalletAddress:   stringField(func(s *ApplicationState) *string { return &s.Wallet.Address }, PathWalletAddress),
	PathWalletNetwork: {
		get: func(s *ApplicationState) (any, bool) {
			if s.Wallet.Network == nil {
				return nil, false
			}
			n := *s.Wallet.Network
			return &n, true
		},
		set: func(s *ApplicationState, v any) error {
			if v == nil {
				s.Wallet.Network = nil
				return nil
			}
			n, ok := v.(*NetworkInfo)
			if !ok {
				return mismatch(PathWalletNetwork, v)
			}
			if n == nil {
				s.Wallet.Network = nil
				return nil
			}
			c := *n
			s.Wallet.Network = &c
			return nil
		},
	},

	PathToken: {
		get: func(s *ApplicationState) (any, bool) { return s.clone().Token, true },
		set: func(s *ApplicationState, v any) error {
			t, ok := v.(TokenState)
			if !ok {
				return mismatch(PathToken, v)
			}
			tmp := ApplicationState{Token: t}
			s.Token = tmp.clone().Token
			return nil
		},
	},
	PathTokenData: {
		get: func(s *ApplicationState) (any, bool) {
			if s.Token.Data == nil {
				return nil, false
			}
			d := *s.Token.Data
			return &d, true
		},
		set: func(s *ApplicationState, v any) error {
			if v == nil {
				s.Token.Data = nil
				return nil
			}
			d, ok := v.(*TokenDraft)
			if !ok {
				return mismatch(PathTokenData, v)
			}
			if d == nil {
				s.Token.Data = nil
				return nil
			}
			c := *d
			s.Token.Data = &c
			return nil
		},
	},
	PathTokenName:        draftString(func(d *TokenDraft) *string { return &d.Name }, PathTokenName),
	PathTokenSymbol:      draftString(func(d *TokenDraft) *string { return &d.Symbol }, PathTokenSymbol),
	PathTokenTotalSupply: draftString(func(d *TokenDraft) *string { return &d.TotalSupply }, PathTokenTotalSupply),
	PathTokenOwner:       draftString(func(d *TokenDraft) *string { return &d.Owner }, PathTokenOwner),
	PathTokenDecimals: {
		get: func(s *ApplicationState) (any, bool) {
			if s.Token.Data == nil {
				return nil, false
			}
			return s.Token.Data.Decimals, true
		},
		set: func(s *ApplicationState, v any) error {
			var d uint8
			switch x := v.(type) {
			case uint8:
				d = x
			case int:
				if x < 0 || x > 255 {
					return mismatch(PathTokenDecimals, v)
				}
				d = uint8(x)
			default:
				return mismatch(PathTokenDecimals, v)
			}
			ensureDraft(s).Decimals = d
			return nil
		},
	},
	PathDeployInProgress: boolField(func(s *ApplicationState) *bool { return &s.Token.DeployInProgress }, PathDeployInProgress),
	PathDeployResult: {
		get: func(s *ApplicationState) (any, bool) {
			if s.Token.DeployResult == nil {
				return nil, false
			}
			tmp := ApplicationState{Token: TokenState{DeployResult: s.Token.DeployResult}}
			return tmp.clone().Token.DeployResult, true
		},
		set: func(s *ApplicationState, v any) error {
			if v == nil {
				s.Token.DeployResult = nil
				return nil
			}
			r, ok := v.(*DeployResult)
			if !ok {
				return mismatch(PathDeployResult, v)
			}
			if r == nil {
				s.Token.DeployResult = nil
				return nil
			}
			tmp := ApplicationState{Token: TokenState{DeployResult: r}}
			s.Token.DeployResult = tmp.clone().Token.DeployResult
			return nil
		},
	},

	PathUI: {
		get: func(s *ApplicationState) (any, bool) { return s.clone().UI, true },
		set: func(s *ApplicationState, v any) error {
			u, ok := v.(UIState)
			if !ok {
				return mismatch(PathUI, v)
			}
			u.CompletedSections = u.CompletedSections.Clone()
			s.UI = u
			return nil
		},
	},
	PathCurrentSection: stringField(func(s *ApplicationState) *string { return &s.UI.CurrentSection }, PathCurrentSection),
	PathCompletedSections: {
		get: func(s *ApplicationState) (any, bool) { return s.UI.CompletedSections.Clone(), true },
		set: func(s *ApplicationState, v any) error {
			switch x := v.(type) {
			case SectionSet:
				s.UI.CompletedSections = x.Clone()
			case []string:
				s.UI.CompletedSections = NewSectionSet(x...)
			default:
				return mismatch(PathCompletedSections, v)
			}
			return nil
		},
	},
	PathLoading: boolField(func(s *ApplicationState) *bool { return &s.UI.Loading }, PathLoading),
}

// ParsePath maps a dotted string such as "wallet.address" onto a Path.
func ParsePath(s string) (Path, error) {
	p := Path(strings.TrimSpace(s))
	if _, ok := fields[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, s)
	}
	return p, nil
}

// Valid reports whether p belongs to the schema.
func (p Path) Valid() bool {
	_, ok := fields[p]
	return ok
}

// Ancestors returns the strict prefixes of p, shortest first.
// "token.data.name" yields ["token", "token.data"].
func (p Path) Ancestors() []Path {
	parts := strings.Split(string(p), ".")
	out := make([]Path, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, Path(strings.Join(parts[:i], ".")))
	}
	return out
}

// Section returns the top-level section name of p.
func (p Path) Section() string {
	s, _, _ := strings.Cut(string(p), ".")
	return s
}

func (p Path) String() string { return string(p) }

// AllPaths returns every valid path in schema order.
func AllPaths() []Path {
	return []Path{
		PathWallet, PathWalletConnected, PathWalletAddress, PathWalletNetwork,
		PathToken, PathTokenData, PathTokenName, PathTokenSymbol, PathTokenDecimals,
		PathTokenTotalSupply, PathTokenOwner, PathDeployInProgress, PathDeployResult,
		PathUI, PathCurrentSection, PathCompletedSections, PathLoading,
	}
}

// --- field builders ---

func boolField(ptr func(*ApplicationState) *bool, p Path) field {
	return field{
		get: func(s *ApplicationState) (any, bool) { return *ptr(s), true },
		set: func(s *ApplicationState, v any) error {
			b, ok := v.(bool)
			if !ok {
				return mismatch(p, v)
			}
			*ptr(s) = b
			return nil
		},
	}
}

func stringField(ptr func(*ApplicationState) *string, p Path) field {
	return field{
		get: func(s *ApplicationState) (any, bool) { return *ptr(s), true },
		set: func(s *ApplicationState, v any) error {
			str, ok := v.(string)
			if !ok {
				return mismatch(p, v)
			}
			*ptr(s) = str
			return nil
		},
	}
}

// draftString addresses a string below token.data, which may not exist yet.
func draftString(ptr func(*TokenDraft) *string, p Path) field {
	return field{
		get: func(s *ApplicationState) (any, bool) {
			if s.Token.Data == nil {
				return nil, false
			}
			return *ptr(s.Token.Data), true
		},
		set: func(s *ApplicationState, v any) error {
			str, ok := v.(string)
			if !ok {
				return mismatch(p, v)
			}
			*ptr(ensureDraft(s)) = str
			return nil
		},
	}
}

// ensureDraft creates the intermediate token.data record on write.
func ensureDraft(s *ApplicationState) *TokenDraft {
	if s.Token.Data == nil {
		s.Token.Data = &TokenDraft{}
	}
	return s.Token.Data
}

func mismatch(p Path, v any) error {
	return fmt.Errorf("%w: %s cannot hold %T", ErrTypeMismatch, p, v)
}
