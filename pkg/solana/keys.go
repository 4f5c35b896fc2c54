package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var ErrInvalidKeypair = errors.New("invalid keypair")

// KeypairFromBase58 decodes a base58 encoded secret. Both the 64 byte secret key
// format (seed followed by public key) used by the Solana CLI and wallets, and a bare
// 32 byte seed are accepted.
func KeypairFromBase58(secret string) (ed25519.PrivateKey, error) {
	b, err := base58.Decode(secret)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKeypair, "not base58")
	}

	switch len(b) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(b), nil
	case ed25519.PrivateKeySize:
		key := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		if !bytes.Equal(key[ed25519.SeedSize:], b[ed25519.SeedSize:]) {
			return nil, errors.Wrap(ErrInvalidKeypair, "public key does not match secret")
		}
		return key, nil
	default:
		return nil, errors.Wrapf(ErrInvalidKeypair, "unexpected length %d", len(b))
	}
}

// NewRandomKeypair generates a new ed25519 key pair.
func NewRandomKeypair() (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	return priv, err
}
