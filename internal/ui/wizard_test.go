package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

const ownerAddr = "0x1111111111111111111111111111111111111111"

var testNetworks = []state.NetworkInfo{
	{ChainID: 1, Name: "Ethereum Mainnet", Symbol: "ETH", Supported: true, DeploySupported: true},
	{ChainID: 97, Name: "BSC Testnet", Symbol: "tBNB", Supported: true, DeploySupported: true},
}

func press(m wizardModel, keys ...tea.KeyMsg) wizardModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(wizardModel)
	}
	return m
}

func typeText(m wizardModel, s string) wizardModel {
	for _, r := range s {
		if r == ' ' {
			m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// replace clears the prefilled input and types s, then submits.
func replace(m wizardModel, s string) wizardModel {
	for range []rune(m.input) {
		m = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	return press(typeText(m, s), tea.KeyMsg{Type: tea.KeyEnter})
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestWizardCollectsDraft(t *testing.T) {
	store := state.New()
	m := newWizard(store, testNetworks)
	assert.Equal(t, SectionNetwork, store.Snapshot().UI.CurrentSection)

	m = press(m, keyDown, keyEnter)
	assert.Equal(t, int64(97), m.result.ChainID)
	assert.True(t, store.IsSectionComplete(SectionNetwork))
	assert.Equal(t, SectionDetails, store.Snapshot().UI.CurrentSection)
	require.NotNil(t, store.Snapshot().Wallet.Network)
	assert.Equal(t, "BSC Testnet", store.Snapshot().Wallet.Network.Name)

	m = replace(m, "Forge Token")
	m = replace(m, "frg")
	assert.Equal(t, "18", m.input, "decimals are prefilled")
	m = replace(m, "6")
	m = replace(m, "1000000")
	m = replace(m, ownerAddr)
	assert.Equal(t, stepReview, m.step)
	assert.True(t, store.IsSectionComplete(SectionDetails))
	assert.Equal(t, SectionReview, store.Snapshot().UI.CurrentSection)

	m = press(m, keyEnter)
	assert.Equal(t, stepDone, m.step)
	assert.True(t, store.IsSectionComplete(SectionReview))

	want := state.TokenDraft{Name: "Forge Token", Symbol: "FRG", Decimals: 6, TotalSupply: "1000000", Owner: ownerAddr}
	assert.Equal(t, want, m.result.Token)
	snap := store.Snapshot()
	require.NotNil(t, snap.Token.Data)
	assert.Equal(t, want, *snap.Token.Data)
}

func TestWizardRejectsInvalidInput(t *testing.T) {
	store := state.New()
	m := press(newWizard(store, testNetworks), keyEnter)

	m = press(m, keyEnter)
	assert.Equal(t, stepName, m.step)
	assert.Contains(t, m.errMsg, "name must not be empty")
	assert.Contains(t, m.View(), "name must not be empty")

	m = replace(m, "Forge")
	m = replace(m, "FRG")
	m = replace(m, "19")
	assert.Equal(t, stepDecimals, m.step)
	assert.Contains(t, m.errMsg, "between 0 and 18")

	m = replace(m, "0")
	m = replace(m, "-5")
	assert.Equal(t, stepSupply, m.step)
	assert.Contains(t, m.errMsg, "totalSupply")

	m = replace(m, "100")
	m = replace(m, "not-an-address")
	assert.Equal(t, stepOwner, m.step)
	assert.Contains(t, m.errMsg, "0x address")

	m = replace(m, ownerAddr)
	assert.Equal(t, stepReview, m.step)
	assert.Empty(t, m.errMsg)
}

func TestWizardPrefillsFromStore(t *testing.T) {
	store := state.New()
	require.NoError(t, store.Set(state.PathTokenData, &state.TokenDraft{Name: "Saved", Symbol: "SVD", Decimals: 8, TotalSupply: "42"}))
	require.NoError(t, store.Set(state.PathWallet, state.WalletState{
		Connected: true,
		Address:   ownerAddr,
		Network:   &state.NetworkInfo{ChainID: 97},
	}))

	m := newWizard(store, testNetworks)
	assert.Equal(t, 1, m.cursor, "cursor starts on the wallet's network")

	m = press(m, keyEnter)
	assert.Equal(t, "Saved", m.input)
	m = press(m, keyEnter, keyEnter, keyEnter, keyEnter)
	assert.Equal(t, stepOwner, m.step)
	assert.Equal(t, ownerAddr, m.input)
	m = press(m, keyEnter, keyEnter)
	assert.Equal(t, stepDone, m.step)
	assert.Equal(t, uint8(8), m.result.Token.Decimals)
}

func TestWizardCursorBounds(t *testing.T) {
	m := newWizard(state.New(), testNetworks)
	m = press(m, keyUp)
	assert.Equal(t, 0, m.cursor)
	m = press(m, keyDown, keyDown, keyDown)
	assert.Equal(t, 1, m.cursor)
}

func TestWizardNoNetworks(t *testing.T) {
	m := press(newWizard(state.New(), nil), keyEnter)
	assert.Equal(t, stepNetwork, m.step)
	assert.Contains(t, m.errMsg, "no deployable networks")
}

func TestWizardEscAborts(t *testing.T) {
	m := newWizard(state.New(), testNetworks)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(wizardModel).aborted)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWizardBackspaceAndTypingOnlyInInputSteps(t *testing.T) {
	m := newWizard(state.New(), testNetworks)
	m = typeText(m, "ignored")
	assert.Empty(t, m.input)

	m = press(m, keyEnter)
	m = typeText(m, "Ab c")
	assert.Equal(t, "Ab c", m.input)
	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "Ab ", m.input)
}

func TestWizardViewPerStep(t *testing.T) {
	m := newWizard(state.New(), testNetworks)
	assert.Contains(t, m.View(), "Select network:")
	assert.Contains(t, m.View(), "BSC Testnet (97)")

	m = press(m, keyEnter)
	assert.Contains(t, m.View(), "Token name:")
}
