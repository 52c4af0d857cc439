package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Token", [][2]string{
		{"Name", "Forge"},
		{"Supply", "1,000,000"},
	})
	assert.Contains(t, result, "Token")
	assert.Contains(t, result, "Name")
	assert.Contains(t, result, "Forge")
	assert.Contains(t, result, "Supply")
	assert.Contains(t, result, "1,000,000")
}

func TestKeyValueBlockEmptyTitle(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"Key", "Value"}})
	assert.Contains(t, result, "Key")
	assert.Contains(t, result, "Value")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("Config", [][2]string{
		{"First", "AAA"},
		{"Second", "BBB"},
		{"Third", "CCC"},
	})
	idxFirst := strings.Index(result, "First")
	idxSecond := strings.Index(result, "Second")
	idxThird := strings.Index(result, "Third")
	require.Greater(t, idxFirst, -1)
	assert.Less(t, idxFirst, idxSecond)
	assert.Less(t, idxSecond, idxThird)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{{"Key", "Val"}})
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

// ---------------------------------------------------------------------------
// DeployResultBlock
// ---------------------------------------------------------------------------

func TestDeployResultBlockSuccess(t *testing.T) {
	r := state.Succeeded("0xabc", "0x123", &state.NetworkInfo{ChainID: 97, Name: "BSC Testnet"}, "800000", "42")
	result := DeployResultBlock(r, "https://testnet.bscscan.com/tx/0x123")
	assert.Contains(t, result, "Token deployed")
	assert.Contains(t, result, "0xabc")
	assert.Contains(t, result, "0x123")
	assert.Contains(t, result, "BSC Testnet")
	assert.Contains(t, result, "800000")
	assert.Contains(t, result, "testnet.bscscan.com")
}

func TestDeployResultBlockUnnamedNetwork(t *testing.T) {
	r := state.Succeeded("0xabc", "0x123", &state.NetworkInfo{ChainID: 31337}, "1", "1")
	assert.Contains(t, DeployResultBlock(r, ""), "chain 31337")
	assert.NotContains(t, DeployResultBlock(r, ""), "Explorer")
}

func TestDeployResultBlockFailure(t *testing.T) {
	result := DeployResultBlock(state.Failed("DeployApiError", "invalid symbol"), "")
	assert.Contains(t, result, "Deploy failed")
	assert.Contains(t, result, "DeployApiError")
	assert.Contains(t, result, "invalid symbol")
}

func TestDeployResultBlockNil(t *testing.T) {
	assert.Contains(t, DeployResultBlock(nil, ""), "no deploy result")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestTableRenderContainsHeadersAndRows(t *testing.T) {
	tbl := NewTable(Column{Title: "Chain ID", Width: 10}, Column{Title: "Network"})
	tbl.AddRow("97", "BSC Testnet")
	tbl.AddRow("11155111", "Sepolia")

	result := tbl.Render()
	for _, s := range []string{"Chain ID", "Network", "97", "BSC Testnet", "11155111", "Sepolia"} {
		assert.Contains(t, result, s)
	}
}

func TestTableAutoWidth(t *testing.T) {
	tbl := NewTable(Column{Title: "N"}, Column{Title: "X"})
	tbl.AddRow("Avalanche C-Chain", "1")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat("-", len("Avalanche C-Chain"))+" -", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Avalanche C-Chain 1"))
}

func TestTableFixedWidthTruncates(t *testing.T) {
	tbl := NewTable(Column{Title: "Hash", Width: 6})
	tbl.AddRow("0x1234567890")
	assert.Contains(t, tbl.Render(), "0x1234")
	assert.NotContains(t, tbl.Render(), "0x12345")
}

func TestTableRowShorterThanColumns(t *testing.T) {
	tbl := NewTable(Column{Title: "A", Width: 5}, Column{Title: "B", Width: 5})
	tbl.AddRow("only1")
	assert.Contains(t, tbl.Render(), "only1")
}

func TestPadR(t *testing.T) {
	assert.Equal(t, "ab   ", padR("ab", 5))
	assert.Equal(t, "abc", padR("abcdef", 3))
	assert.Equal(t, "", padR("abc", 0))
	assert.Equal(t, "…x ", padR("…x", 3))
}
