package contract

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/taker-protocol/taker-client/pkg/metrics"
	"github.com/taker-protocol/taker-client/pkg/pointer"
	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/system"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
	"github.com/taker-protocol/taker-client/pkg/solana/token"
)

const lamportsPerSolExp = 9

var ErrContractNotFound = errors.New("contract account not found")

// Balance is the native balance of an account.
type Balance struct {
	Account  ed25519.PublicKey
	Lamports uint64
	// SystemOwned is false for accounts that don't exist yet.
	SystemOwned bool
}

// SOL returns the balance in SOL.
func (b *Balance) SOL() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(b.Lamports), -lamportsPerSolExp)
}

// TokenBalance is the balance of one of the contract's token accounts.
type TokenBalance struct {
	Mint    ed25519.PublicKey
	Account ed25519.PublicKey
	// Amount is nil when the token account does not exist.
	Amount *uint64
}

// Inspector provides views of the taker program's accounts, and devnet funding
// of the authority.
type Inspector struct {
	log        *logrus.Entry
	conf       *Config
	client     solana.Client
	commitment solana.Commitment
}

func NewInspector(conf *Config, client solana.Client, commitment solana.Commitment) (*Inspector, error) {
	if err := conf.Apply(); err != nil {
		return nil, err
	}

	return &Inspector{
		log:        logrus.StandardLogger().WithField("type", "contract/inspector"),
		conf:       conf,
		client:     client,
		commitment: commitment,
	}, nil
}

// ContractAddress returns the contract account of the configured authority.
func (i *Inspector) ContractAddress() (ed25519.PublicKey, uint8, error) {
	authority := i.conf.AuthorityPublicKey()
	if authority == nil {
		return nil, 0, classifyf(ErrConfigMissing, "%s not set", OwnerKeypairConfigEnvName)
	}

	address, bump, err := taker.GetContractAddress(authority)
	if err != nil {
		return nil, 0, classify(ErrDerivation, err)
	}
	return address, bump, nil
}

// ListingAddress returns the listing record of the configured NFT mint deposited
// by the authority.
func (i *Inspector) ListingAddress() (ed25519.PublicKey, uint8, error) {
	authority := i.conf.AuthorityPublicKey()
	if authority == nil {
		return nil, 0, classifyf(ErrConfigMissing, "%s not set", OwnerKeypairConfigEnvName)
	}
	if i.conf.NFTMint == nil {
		return nil, 0, classifyf(ErrConfigMissing, "%s not set", NFTMintConfigEnvName)
	}

	address, bump, err := taker.GetNFTListingAddress(&taker.GetNFTListingAddressArgs{
		Mint:   i.conf.NFTMint,
		Wallet: authority,
	})
	if err != nil {
		return nil, 0, classify(ErrDerivation, err)
	}
	return address, bump, nil
}

// ContractData fetches and decodes the authority's contract account.
func (i *Inspector) ContractData(ctx context.Context) (*taker.TakerContractAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, "contract.inspector", "ContractData")
	defer tracer.End()

	address, _, err := i.ContractAddress()
	if err != nil {
		return nil, err
	}

	info, err := i.client.GetAccountInfo(address, i.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrContractNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, networkOr(ErrNetwork, err)
	}

	if !bytes.Equal(info.Owner, i.conf.Program) {
		return nil, errors.Wrap(taker.ErrInvalidAccountData, "contract is not owned by the program")
	}

	var account taker.TakerContractAccount
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &account, nil
}

// Balance returns the authority's native balance.
func (i *Inspector) Balance(ctx context.Context) (*Balance, error) {
	tracer := metrics.TraceMethodCall(ctx, "contract.inspector", "Balance")
	defer tracer.End()

	authority := i.conf.AuthorityPublicKey()
	if authority == nil {
		return nil, classifyf(ErrConfigMissing, "%s not set", OwnerKeypairConfigEnvName)
	}

	lamports, err := i.client.GetBalance(authority)
	if err != nil {
		tracer.OnError(err)
		return nil, networkOr(ErrNetwork, err)
	}

	balance := &Balance{
		Account:  authority,
		Lamports: lamports,
	}

	info, err := i.client.GetAccountInfo(authority, i.commitment)
	switch err {
	case nil:
		balance.SystemOwned = system.IsSystemOwned(info)
	case solana.ErrNoAccountInfo:
	default:
		return nil, networkOr(ErrNetwork, err)
	}

	return balance, nil
}

// Airdrop requests lamports for the authority from the cluster faucet and waits
// for the transfer to confirm. Only devnet and testnet serve airdrops.
func (i *Inspector) Airdrop(ctx context.Context, lamports uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, "contract.inspector", "Airdrop")
	defer tracer.End()

	authority := i.conf.AuthorityPublicKey()
	if authority == nil {
		return solana.Signature{}, classifyf(ErrConfigMissing, "%s not set", OwnerKeypairConfigEnvName)
	}
	if lamports == 0 {
		return solana.Signature{}, classifyf(ErrConfigInvalid, "airdrop amount must be positive")
	}

	log := i.log.WithFields(logrus.Fields{
		"method":    "Airdrop",
		"authority": base58.Encode(authority),
		"lamports":  lamports,
	})

	sig, err := i.client.RequestAirdrop(authority, lamports, i.commitment)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, networkOr(ErrSubmission, err)
	}
	log = log.WithField("signature", sig.String())

	ctx, cancel := context.WithTimeout(ctx, i.conf.ConfirmTimeout)
	defer cancel()

	status, err := solana.AwaitSignatureStatus(ctx, i.client, sig, i.commitment)
	if err != nil {
		tracer.OnError(err)
		return sig, classify(ErrNetwork, errors.Wrap(err, "airdrop not confirmed"))
	}
	if status.ErrorResult != nil {
		return sig, classify(ErrSubmission, status.ErrorResult)
	}

	log.Info("airdrop confirmed")
	return sig, nil
}

// LamportsFromSOL parses a decimal SOL amount, such as "1.5", into lamports.
func LamportsFromSOL(amount string) (uint64, error) {
	sol, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, classify(ErrConfigInvalid, errors.Wrapf(err, "invalid SOL amount %q", amount))
	}

	lamports := sol.Shift(lamportsPerSolExp)
	if !lamports.IsInteger() || lamports.Sign() <= 0 || lamports.BigInt().BitLen() > 64 {
		return 0, classifyf(ErrConfigInvalid, "invalid SOL amount %q", amount)
	}
	return lamports.BigInt().Uint64(), nil
}

// TokenBalances returns the balances of the contract's associated token accounts
// for each configured mint.
func (i *Inspector) TokenBalances(ctx context.Context) ([]TokenBalance, error) {
	tracer := metrics.TraceMethodCall(ctx, "contract.inspector", "TokenBalances")
	defer tracer.End()

	contract, _, err := i.ContractAddress()
	if err != nil {
		return nil, err
	}

	var balances []TokenBalance
	for _, mint := range []ed25519.PublicKey{i.conf.TkrMint, i.conf.TaiMint, i.conf.DaiMint} {
		if mint == nil {
			continue
		}

		ata, err := token.GetAssociatedAccount(contract, mint)
		if err != nil {
			return nil, classify(ErrDerivation, err)
		}

		balance := TokenBalance{Mint: mint, Account: ata}

		account, err := token.GetAccount(i.client, ata, mint, i.commitment)
		switch {
		case err == nil:
			balance.Amount = pointer.To(account.Amount)
		case errors.Is(err, token.ErrAccountNotFound):
		case errors.Is(err, token.ErrInvalidTokenAccount):
			return nil, errors.Wrapf(err, "token account %s", base58.Encode(ata))
		default:
			return nil, networkOr(ErrNetwork, err)
		}

		balances = append(balances, balance)
	}

	return balances, nil
}
