package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

// EncodeSolanaSecret returns the base58 wallet encoding of a keypair, as stored in
// TAKER_OWNER_KEYPAIR.
func EncodeSolanaSecret(key ed25519.PrivateKey) string {
	return base58.Encode(key)
}

// EncodeSolanaAddress returns the base58 encoding of an address.
func EncodeSolanaAddress(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
