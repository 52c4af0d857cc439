package state_test

import (
	"testing"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	p, err := state.ParsePath(" token.data.symbol ")
	require.NoError(t, err)
	assert.Equal(t, state.PathTokenSymbol, p)

	_, err = state.ParsePath("token.data.colour")
	assert.ErrorIs(t, err, state.ErrUnknownPath)
}

func TestAncestors(t *testing.T) {
	assert.Equal(t, []state.Path{"token", "token.data"}, state.PathTokenName.Ancestors())
	assert.Equal(t, []state.Path{"wallet"}, state.PathWalletAddress.Ancestors())
	assert.Empty(t, state.PathUI.Ancestors())
}

func TestSection(t *testing.T) {
	assert.Equal(t, state.SectionToken, state.PathTokenOwner.Section())
	assert.Equal(t, state.SectionUI, state.PathUI.Section())
}

func TestAllPathsAreValid(t *testing.T) {
	paths := state.AllPaths()
	assert.Len(t, paths, 17)
	for _, p := range paths {
		assert.True(t, p.Valid(), p.String())
		for _, anc := range p.Ancestors() {
			assert.True(t, anc.Valid(), "ancestor %s of %s", anc, p)
		}
	}
}
