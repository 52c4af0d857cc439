package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EphemeralKey is a single-use deployer key handed to the hosted deploy API.
// It is never persisted. String and Format print only the address.
type EphemeralKey struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// GenerateEphemeral creates a fresh random secp256k1 key.
func GenerateEphemeral() (*EphemeralKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return &EphemeralKey{Address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// PrivateKeyHex returns the 0x-prefixed hex private key.
func (k *EphemeralKey) PrivateKeyHex() string {
	return hexKeyOf(k.key)
}

func (k *EphemeralKey) String() string {
	return "ephemeral(" + k.Address.Hex() + ")"
}

// Format keeps %v, %+v and %#v from printing the private key.
func (k *EphemeralKey) Format(f fmt.State, _ rune) {
	fmt.Fprint(f, k.String())
}
