package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	cases := map[string]string{
		"0xabc123":  "abc123",
		"0Xabc123":  "abc123",
		"abc123":    "abc123",
		"  0xabc  ": "abc",
		"0x":        "",
		"":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normaliseHexKey(in), "input %q", in)
	}
}

// ---------------------------------------------------------------------------
// Keystore
// ---------------------------------------------------------------------------

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	t.Setenv(EnvPrivateKey, testKey)

	ks := &Keystore{ring: nil} // nil ring: must be served by env var
	got, err := ks.Retrieve("tokenforge.any-ref")
	require.NoError(t, err)
	// normaliseHexKey strips the 0x prefix.
	assert.Equal(t, "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", got)
}

func TestKeystoreRetrieveNilRing(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := &Keystore{ring: nil}
	_, err := ks.Retrieve("tokenforge.ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestKeystoreStoreNilRing(t *testing.T) {
	ks := &Keystore{ring: nil}
	_, err := ks.Store("w", "key")
	assert.Error(t, err)
}

func TestKeystoreDeleteNilRing(t *testing.T) {
	// nil ring: should succeed (no OS keychain to touch).
	ks := &Keystore{ring: nil}
	require.NoError(t, ks.Delete("tokenforge.anything"))
}

func TestFileKeystoreRoundTrip(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := testKeystore(t)

	ref, err := ks.Store("filewallet", "0xfeed")
	require.NoError(t, err)
	assert.Equal(t, "tokenforge.filewallet", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", got)

	require.NoError(t, ks.Delete(ref))
	require.NoError(t, ks.Delete(ref), "deleting a missing key is a no-op")
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystoreStoreAndRetrieve(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("mykey", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "tokenforge.mykey", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", val)
}

func TestInMemoryKeystoreRetrieveNotFound(t *testing.T) {
	iks := NewInMemoryKeystore()
	_, err := iks.Retrieve("tokenforge.ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInMemoryKeystoreDelete(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, _ := iks.Store("del", "secret")

	require.NoError(t, iks.Delete(ref))

	_, err := iks.Retrieve(ref)
	require.Error(t, err, "key should be gone after delete")
	assert.NoError(t, iks.Delete("tokenforge.ghost"), "deleting missing key must not error")
}

func TestInMemoryKeystoreOverwrite(t *testing.T) {
	iks := NewInMemoryKeystore()
	iks.Store("k", "first")  //nolint:errcheck
	iks.Store("k", "second") //nolint:errcheck

	val, err := iks.Retrieve("tokenforge.k")
	require.NoError(t, err)
	assert.Equal(t, "second", val, "second store should overwrite first")
}
