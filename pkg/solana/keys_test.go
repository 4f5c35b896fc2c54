package solana

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypairFromBase58(t *testing.T) {
	key, err := NewRandomKeypair()
	require.NoError(t, err)

	decoded, err := KeypairFromBase58(base58.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	decoded, err = KeypairFromBase58(base58.Encode(key.Seed()))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	mismatched := append([]byte{}, key...)
	mismatched[63] ^= 0xff
	_, err = KeypairFromBase58(base58.Encode(mismatched))
	assert.ErrorIs(t, err, ErrInvalidKeypair)

	_, err = KeypairFromBase58(base58.Encode(key[:10]))
	assert.ErrorIs(t, err, ErrInvalidKeypair)

	_, err = KeypairFromBase58("0OIl")
	assert.ErrorIs(t, err, ErrInvalidKeypair)
}
