package taker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taker-protocol/taker-client/pkg/solana"
)

func TestGetProgramError(t *testing.T) {
	e, ok := GetProgramError(300)
	require.True(t, ok)
	assert.Equal(t, ErrNotAuthorized, e)
	assert.Equal(t, "taker error 300: Not Authorized", e.Error())

	e, ok = GetProgramError(315)
	require.True(t, ok)
	assert.Equal(t, ErrLoanNotActive, e)

	_, ok = GetProgramError(316)
	assert.False(t, ok)
	_, ok = GetProgramError(1)
	assert.False(t, ok)
	_, ok = GetProgramError(-1)
	assert.False(t, ok)
}

func TestProgramErrorFrom(t *testing.T) {
	txErr, err := solana.ParseTransactionError(map[string]interface{}{
		"InstructionError": []interface{}{0.0, map[string]interface{}{"Custom": 301.0}},
	})
	require.NoError(t, err)

	e, ok := ProgramErrorFrom(errors.Wrap(txErr, "submit"))
	require.True(t, ok)
	assert.Equal(t, ErrContractAddressNotCorrect, e)

	_, ok = ProgramErrorFrom(errors.New("timeout"))
	assert.False(t, ok)
}
