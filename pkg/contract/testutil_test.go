package contract

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/taker-protocol/taker-client/pkg/config/memory"
	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
	"github.com/taker-protocol/taker-client/pkg/testutil"
)

type testEnv struct {
	authority ed25519.PrivateKey
	mints     []ed25519.PublicKey
	store     *memory.Store
	client    *fakeClient
}

func newTestEnv(t *testing.T) *testEnv {
	authority := testutil.GenerateSolanaKeypair(t)
	mints := testutil.GenerateSolanaKeys(t, 4)

	store := memory.NewStore(map[string]interface{}{
		OwnerKeypairConfigEnvName: testutil.EncodeSolanaSecret(authority),
		TkrMintConfigEnvName:      testutil.EncodeSolanaAddress(mints[0]),
		TaiMintConfigEnvName:      testutil.EncodeSolanaAddress(mints[1]),
		DaiMintConfigEnvName:      testutil.EncodeSolanaAddress(mints[2]),
	})

	t.Cleanup(func() {
		require.NoError(t, taker.SetProgramID(defaultProgram))
	})

	return &testEnv{
		authority: authority,
		mints:     mints,
		store:     store,
		client:    newFakeClient(),
	}
}

var defaultProgram = append(ed25519.PublicKey{}, taker.PROGRAM_ID...)

func (e *testEnv) config(t *testing.T, required Requirement) *Config {
	conf, err := LoadConfig(context.Background(), WithSource(e.store.Source()), required)
	require.NoError(t, err)
	return conf
}

type fakeClient struct {
	solana.Client

	mu    sync.Mutex
	calls map[string]int

	blockhash    solana.Blockhash
	blockhashErr error

	submitErr error
	submitted []solana.Transaction

	statuses  []*solana.SignatureStatus
	statusErr error

	accounts   map[string]solana.AccountInfo
	balance    uint64
	balanceErr error

	airdropErr error
	airdrops   []uint64
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:     make(map[string]int),
		blockhash: solana.Blockhash{1, 2, 3},
		accounts:  make(map[string]solana.AccountInfo),
	}
}

func (c *fakeClient) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
}

func (c *fakeClient) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int
	for _, n := range c.calls {
		total += n
	}
	return total
}

func (c *fakeClient) callCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *fakeClient) GetLatestBlockhash() (solana.Blockhash, error) {
	c.record("getLatestBlockhash")
	return c.blockhash, c.blockhashErr
}

func (c *fakeClient) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	c.record("sendTransaction")

	c.mu.Lock()
	c.submitted = append(c.submitted, txn)
	c.mu.Unlock()

	return txn.Signature(), c.submitErr
}

func (c *fakeClient) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.record("getSignatureStatuses")
	if c.statusErr != nil {
		return nil, c.statusErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.statuses) == 0 {
		return make([]*solana.SignatureStatus, len(sigs)), nil
	}
	status := c.statuses[0]
	if len(c.statuses) > 1 {
		c.statuses = c.statuses[1:]
	}
	return []*solana.SignatureStatus{status}, nil
}

func (c *fakeClient) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.record("getAccountInfo")

	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.accounts[base58.Encode(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *fakeClient) GetBalance(_ ed25519.PublicKey) (uint64, error) {
	c.record("getBalance")
	return c.balance, c.balanceErr
}

func (c *fakeClient) RequestAirdrop(_ ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	c.record("requestAirdrop")
	if c.airdropErr != nil {
		return solana.Signature{}, c.airdropErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.airdrops = append(c.airdrops, lamports)
	return solana.Signature{byte(len(c.airdrops))}, nil
}

func (c *fakeClient) setAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[base58.Encode(address)] = info
}

var errTestTransport = &solana.TransportError{Method: "test", Err: errors.New("connection refused")}
