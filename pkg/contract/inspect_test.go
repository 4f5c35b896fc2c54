package contract

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/system"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
	"github.com/taker-protocol/taker-client/pkg/solana/token"
	"github.com/taker-protocol/taker-client/pkg/testutil"
)

func TestInspector_Addresses(t *testing.T) {
	env := newTestEnv(t)
	env.store.Set(NFTMintConfigEnvName, testutil.EncodeSolanaAddress(env.mints[3]))

	conf := env.config(t, RequireAuthority|RequireNFTMint)
	inspector, err := NewInspector(conf, env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	contract, bump, err := inspector.ContractAddress()
	require.NoError(t, err)
	expected, expectedBump, err := taker.GetContractAddress(conf.AuthorityPublicKey())
	require.NoError(t, err)
	assert.Equal(t, expected, contract)
	assert.Equal(t, expectedBump, bump)

	listing, _, err := inspector.ListingAddress()
	require.NoError(t, err)
	expected, _, err = taker.GetNFTListingAddress(&taker.GetNFTListingAddressArgs{
		Mint:   env.mints[3],
		Wallet: conf.AuthorityPublicKey(),
	})
	require.NoError(t, err)
	assert.Equal(t, expected, listing)

	assert.Equal(t, 0, env.client.totalCalls())
}

func TestInspector_MissingConfig(t *testing.T) {
	env := newTestEnv(t)
	env.store.Clear(OwnerKeypairConfigEnvName)

	inspector, err := NewInspector(env.config(t, 0), env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	_, _, err = inspector.ContractAddress()
	assert.Equal(t, ErrorClassConfigMissing, Classify(err))

	_, _, err = inspector.ListingAddress()
	assert.Equal(t, ErrorClassConfigMissing, Classify(err))

	_, err = inspector.Balance(context.Background())
	assert.Equal(t, ErrorClassConfigMissing, Classify(err))

	assert.Equal(t, 0, env.client.totalCalls())
}

func TestInspector_ContractData(t *testing.T) {
	env := newTestEnv(t)
	conf := env.config(t, InitializeRequirements)

	inspector, err := NewInspector(conf, env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	_, err = inspector.ContractData(context.Background())
	assert.Equal(t, ErrContractNotFound, err)

	contract, bump, err := inspector.ContractAddress()
	require.NoError(t, err)

	state := &taker.TakerContractAccount{
		Seed:             testutil.GenerateSolanaKeys(t, 1)[0],
		Bump:             bump,
		Authority:        conf.AuthorityPublicKey(),
		TkrMint:          conf.TkrMint,
		TaiMint:          conf.TaiMint,
		DaiMint:          conf.DaiMint,
		DepositIncentive: 100,
		MaxLoanDuration:  30,
		ServiceFeeRate:   500,
		InterestRate:     100,
	}

	env.client.setAccount(contract, solana.AccountInfo{Owner: system.ProgramKey, Data: state.Marshal()})
	_, err = inspector.ContractData(context.Background())
	assert.ErrorIs(t, err, taker.ErrInvalidAccountData)

	env.client.setAccount(contract, solana.AccountInfo{Owner: conf.Program, Data: state.Marshal()})
	actual, err := inspector.ContractData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.Authority, actual.Authority)
	assert.Equal(t, state.DaiMint, actual.DaiMint)
	assert.EqualValues(t, 500, actual.ServiceFeeRate)
	assert.EqualValues(t, 30, actual.MaxLoanDuration)
}

func TestInspector_Balance(t *testing.T) {
	env := newTestEnv(t)
	conf := env.config(t, RequireAuthority)
	env.client.balance = 2_500_000_001

	inspector, err := NewInspector(conf, env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	balance, err := inspector.Balance(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2_500_000_001, balance.Lamports)
	assert.Equal(t, "2.500000001", balance.SOL().String())
	assert.False(t, balance.SystemOwned)

	env.client.setAccount(conf.AuthorityPublicKey(), solana.AccountInfo{Owner: system.ProgramKey, Lamports: 2_500_000_001})
	balance, err = inspector.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.SystemOwned)

	env.client.balanceErr = errTestTransport
	_, err = inspector.Balance(context.Background())
	assert.Equal(t, ErrorClassNetwork, Classify(err))
}

func TestInspector_TokenBalances(t *testing.T) {
	env := newTestEnv(t)
	conf := env.config(t, InitializeRequirements)

	inspector, err := NewInspector(conf, env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	contract, _, err := inspector.ContractAddress()
	require.NoError(t, err)

	tkrToken, err := token.GetAssociatedAccount(contract, conf.TkrMint)
	require.NoError(t, err)

	account := token.Account{
		Mint:   conf.TkrMint,
		Owner:  contract,
		Amount: 42,
		State:  token.AccountStateInitialized,
	}
	env.client.setAccount(tkrToken, solana.AccountInfo{Owner: token.ProgramKey, Data: account.Marshal()})

	balances, err := inspector.TokenBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 3)

	assert.Equal(t, tkrToken, balances[0].Account)
	require.NotNil(t, balances[0].Amount)
	assert.EqualValues(t, 42, *balances[0].Amount)
	assert.Nil(t, balances[1].Amount)
	assert.Nil(t, balances[2].Amount)
}

func TestInspector_Airdrop(t *testing.T) {
	env := newTestEnv(t)
	one := 1
	env.client.statuses = []*solana.SignatureStatus{
		nil,
		{Slot: 12, Confirmations: &one, ConfirmationStatus: "confirmed"},
	}

	inspector, err := NewInspector(env.config(t, RequireAuthority), env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	sig, err := inspector.Airdrop(context.Background(), 1_500_000_000)
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{1}, sig)
	assert.Equal(t, []uint64{1_500_000_000}, env.client.airdrops)
	assert.Equal(t, 2, env.client.callCount("getSignatureStatuses"))

	_, err = inspector.Airdrop(context.Background(), 0)
	assert.Equal(t, ErrorClassConfigInvalid, Classify(err))
	assert.Equal(t, 1, env.client.callCount("requestAirdrop"))
}

func TestInspector_AirdropFailures(t *testing.T) {
	env := newTestEnv(t)
	env.store.Set(ConfirmTimeoutConfigEnvName, "50ms")

	inspector, err := NewInspector(env.config(t, RequireAuthority), env.client, solana.CommitmentConfirmed)
	require.NoError(t, err)

	// Never confirmed.
	_, err = inspector.Airdrop(context.Background(), 1)
	assert.Equal(t, ErrorClassNetwork, Classify(err))

	env.client.airdropErr = errTestTransport
	_, err = inspector.Airdrop(context.Background(), 1)
	assert.Equal(t, ErrorClassNetwork, Classify(err))

	env.client.airdropErr = errors.New("airdrop request limit reached")
	_, err = inspector.Airdrop(context.Background(), 1)
	assert.Equal(t, ErrorClassSubmission, Classify(err))
}

func TestLamportsFromSOL(t *testing.T) {
	for _, tc := range []struct {
		in       string
		lamports uint64
	}{
		{"1", 1_000_000_000},
		{"1.5", 1_500_000_000},
		{"0.000000001", 1},
	} {
		lamports, err := LamportsFromSOL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.lamports, lamports, tc.in)
	}

	for _, in := range []string{"", "abc", "0", "-1", "0.0000000001", "18446744073.709551616"} {
		_, err := LamportsFromSOL(in)
		assert.Equal(t, ErrorClassConfigInvalid, Classify(err), in)
	}
}
