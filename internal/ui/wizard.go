package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenforge/internal/deploy"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// Wizard section names recorded in ui.currentSection and ui.completedSections.
const (
	SectionNetwork = "network"
	SectionDetails = "token-details"
	SectionReview  = "review"
)

// ErrWizardAborted is returned when the user quits before confirming.
var ErrWizardAborted = errors.New("token wizard aborted")

// WizardResult holds what the token wizard collected.
type WizardResult struct {
	Token   state.TokenDraft
	ChainID int64
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepName
	stepSymbol
	stepDecimals
	stepSupply
	stepOwner
	stepReview
	stepDone
)

type wizardModel struct {
	store    *state.Store
	networks []state.NetworkInfo

	step    wizardStep
	cursor  int
	input   string
	errMsg  string
	result  WizardResult
	aborted bool
}

func newWizard(store *state.Store, networks []state.NetworkInfo) wizardModel {
	m := wizardModel{store: store, networks: networks}
	snap := store.Snapshot()
	if snap.Token.Data != nil {
		m.result.Token = *snap.Token.Data
	} else {
		m.result.Token.Decimals = deploy.MaxDecimals
	}
	if m.result.Token.Owner == "" && snap.Wallet.Address != "" {
		m.result.Token.Owner = snap.Wallet.Address
	}
	if n := snap.Wallet.Network; n != nil {
		for i, net := range networks {
			if net.ChainID == n.ChainID {
				m.cursor = i
			}
		}
	}
	m.enterSection(SectionNetwork)
	return m
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.step == stepNetwork && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.step == stepNetwork && m.cursor < len(m.networks)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if m.typing() {
			m.input += " "
		}
	case tea.KeyRunes:
		if m.typing() {
			m.input += string(key.Runes)
		}
	}
	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m wizardModel) typing() bool { return m.step > stepNetwork && m.step < stepReview }

// submit accepts the current step and advances.
func (m *wizardModel) submit() {
	m.errMsg = ""
	switch m.step {
	case stepNetwork:
		if len(m.networks) == 0 {
			m.errMsg = "no deployable networks available"
			return
		}
		net := m.networks[m.cursor]
		m.result.ChainID = net.ChainID
		m.set(state.PathWalletNetwork, &net)
		m.store.MarkSectionComplete(SectionNetwork)
		m.enterSection(SectionDetails)
	case stepReview:
		draft := m.result.Token
		if err := deploy.Validate(&draft); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.set(state.PathTokenData, &draft)
		m.store.MarkSectionComplete(SectionReview)
	default:
		if err := m.acceptInput(); err != nil {
			m.errMsg = err.Error()
			return
		}
		if m.step == stepOwner {
			m.store.MarkSectionComplete(SectionDetails)
			m.enterSection(SectionReview)
		}
	}
	m.step++
	m.input = m.prefill()
}

// acceptInput validates the typed value and writes it to the draft.
func (m *wizardModel) acceptInput() error {
	v := strings.TrimSpace(m.input)
	t := &m.result.Token
	switch m.step {
	case stepName:
		if v == "" {
			return errors.New("name must not be empty")
		}
		t.Name = v
		m.set(state.PathTokenName, v)
	case stepSymbol:
		if v == "" {
			return errors.New("symbol must not be empty")
		}
		t.Symbol = strings.ToUpper(v)
		m.set(state.PathTokenSymbol, t.Symbol)
	case stepDecimals:
		d, err := strconv.ParseUint(v, 10, 8)
		if err != nil || d > deploy.MaxDecimals {
			return fmt.Errorf("decimals must be between 0 and %d", deploy.MaxDecimals)
		}
		t.Decimals = uint8(d)
		m.set(state.PathTokenDecimals, t.Decimals)
	case stepSupply:
		if _, err := deploy.ScaledSupply(v, t.Decimals); err != nil {
			return err
		}
		t.TotalSupply = v
		m.set(state.PathTokenTotalSupply, v)
	case stepOwner:
		if !common.IsHexAddress(v) {
			return errors.New("owner must be a 0x address")
		}
		t.Owner = common.HexToAddress(v).Hex()
		m.set(state.PathTokenOwner, t.Owner)
	}
	return nil
}

// prefill returns the saved value for the step being entered.
func (m *wizardModel) prefill() string {
	t := m.result.Token
	switch m.step {
	case stepName:
		return t.Name
	case stepSymbol:
		return t.Symbol
	case stepDecimals:
		return strconv.Itoa(int(t.Decimals))
	case stepSupply:
		return t.TotalSupply
	case stepOwner:
		return t.Owner
	}
	return ""
}

func (m *wizardModel) enterSection(name string) {
	m.set(state.PathCurrentSection, name)
}

func (m *wizardModel) set(p state.Path, v any) {
	if err := m.store.Set(p, v); err != nil {
		m.errMsg = err.Error()
	}
}

var stepPrompts = map[wizardStep]string{
	stepName:     "Token name:",
	stepSymbol:   "Token symbol:",
	stepDecimals: "Decimals (0-18):",
	stepSupply:   "Total supply (whole tokens):",
	stepOwner:    "Owner address:",
}

func (m wizardModel) View() string {
	var s string
	switch m.step {
	case stepNetwork:
		labels := make([]string, len(m.networks))
		for i, n := range m.networks {
			labels[i] = fmt.Sprintf("%s (%d)", n.Name, n.ChainID)
		}
		s = renderMenu("Select network:", labels, m.cursor)
	case stepReview:
		t := m.result.Token
		s = KeyValueBlock("Review token", [][2]string{
			{"Name", t.Name},
			{"Symbol", t.Symbol},
			{"Decimals", strconv.Itoa(int(t.Decimals))},
			{"Total supply", t.TotalSupply},
			{"Owner", t.Owner},
			{"Chain", strconv.FormatInt(m.result.ChainID, 10)},
		})
		s += "\n" + StyleMeta.Render("Enter deploy · Esc cancel")
	case stepDone:
		s = Success("Token ready to deploy") + "\n"
	default:
		s = StyleTitle.Render(stepPrompts[m.step]) + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
		s += StyleMeta.Render("Enter next · Esc cancel")
	}
	if m.errMsg != "" {
		s += "\n" + Err(m.errMsg)
	}
	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc quit")
	return s
}

// RunTokenWizard collects a token draft interactively. Accepted fields are
// written to store as they are entered, so an aborted wizard keeps its
// answers for the next run.
func RunTokenWizard(store *state.Store, networks []state.NetworkInfo) (*WizardResult, error) {
	p := tea.NewProgram(newWizard(store, networks))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	m := final.(wizardModel)
	if m.aborted || m.step != stepDone {
		return nil, ErrWizardAborted
	}
	res := m.result
	return &res, nil
}
