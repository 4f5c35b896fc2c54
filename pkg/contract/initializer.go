package contract

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/taker-protocol/taker-client/pkg/metrics"
	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
	"github.com/taker-protocol/taker-client/pkg/solana/token"
)

const (
	metricsStructName = "contract.initializer"

	initializeEventName = "TakerInitialize"
)

// TokenAccounts are the contract's associated token accounts, one per mint.
type TokenAccounts struct {
	Tkr ed25519.PublicKey
	Tai ed25519.PublicKey
	Dai ed25519.PublicKey
}

// Result describes a submitted initialize transaction.
type Result struct {
	RunID     string
	Signature solana.Signature

	Contract     ed25519.PublicKey
	ContractBump uint8
	Seed         ed25519.PublicKey

	TokenAccounts TokenAccounts
	Layout        taker.AccountLayout

	// Confirmed is set when the transaction was observed at the configured
	// commitment.
	Confirmed bool
}

// Initializer submits the taker program's initialize instruction.
type Initializer struct {
	log        *logrus.Entry
	conf       *Config
	client     solana.Client
	commitment solana.Commitment
}

// NewInitializer returns an Initializer for a configuration loaded with
// InitializeRequirements.
func NewInitializer(conf *Config, client solana.Client, commitment solana.Commitment) (*Initializer, error) {
	if conf.Authority == nil {
		return nil, classifyf(ErrConfigMissing, "%s not set", OwnerKeypairConfigEnvName)
	}
	if err := conf.Apply(); err != nil {
		return nil, err
	}

	return &Initializer{
		log:        logrus.StandardLogger().WithField("type", "contract/initializer"),
		conf:       conf,
		client:     client,
		commitment: commitment,
	}, nil
}

// Run derives the contract accounts, then builds, signs and submits a single
// initialize transaction. The submission is never retried.
func (i *Initializer) Run(ctx context.Context) (result *Result, err error) {
	runID := uuid.New().String()

	ctx, end := metrics.StartTransaction(ctx, "initialize")
	defer func() {
		end(err)
	}()

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Run")
	tracer.AddAttribute("run_id", runID)
	defer func() {
		tracer.EndWithError(err)
	}()

	log := i.log.WithFields(logrus.Fields{
		"method": "Run",
		"run_id": runID,
		"layout": i.conf.Layout,
	})

	start := time.Now()
	defer func() {
		kvs := map[string]interface{}{
			"run_id":  runID,
			"success": err == nil,
			"class":   Classify(err).String(),
		}
		metrics.RecordEvent(ctx, initializeEventName, kvs)
		metrics.RecordDuration(ctx, "taker.initialize.duration", time.Since(start))

		if err != nil {
			log.WithError(err).WithField("class", Classify(err).String()).Warn("initialize failed")
		}
	}()

	if i.conf.Layout == taker.AccountLayoutMintsOnly {
		log.Warn("using the mints-only initialize layout, which omits the contract token accounts and token program")
	}

	result = &Result{
		RunID:  runID,
		Layout: i.conf.Layout,
	}

	result.Seed = i.conf.ContractSeed
	if result.Seed == nil {
		seed, err := solana.NewRandomKeypair()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate contract seed")
		}
		result.Seed = seed.Public().(ed25519.PublicKey)
	}

	authority := i.conf.AuthorityPublicKey()
	accounts, err := i.deriveAccounts(authority, result)
	if err != nil {
		return nil, err
	}

	log = log.WithFields(logrus.Fields{
		"authority": base58.Encode(authority),
		"contract":  base58.Encode(result.Contract),
		"seed":      base58.Encode(result.Seed),
	})

	ix, err := taker.NewInitializeInstructionForLayout(
		i.conf.Layout,
		accounts,
		&taker.InitializeInstructionArgs{Seed: result.Seed},
	)
	if err != nil {
		if errors.Is(err, taker.ErrMissingAccount) {
			return nil, classify(ErrMissingAccount, err)
		}
		return nil, classify(ErrConfigInvalid, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blockhash, err := i.client.GetLatestBlockhash()
	if err != nil {
		return nil, classify(ErrNetwork, errors.Wrap(err, "failed to get recent blockhash"))
	}

	txn := solana.NewTransaction(authority, ix)
	txn.SetBlockhash(blockhash)
	if err := txn.Sign(i.conf.Authority); err != nil {
		return nil, classify(ErrSubmission, errors.Wrap(err, "failed to sign transaction"))
	}
	result.Signature = txn.Signature()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log = log.WithField("signature", result.Signature.String())
	log.Debug("submitting initialize transaction")

	if _, err := i.client.SubmitTransaction(txn, i.commitment); err != nil {
		if programErr, ok := taker.ProgramErrorFrom(err); ok {
			log.WithField("program_error", programErr.Error()).Debug("program rejected initialize")
			return result, classify(ErrSubmission, errors.WithMessage(err, programErr.Error()))
		}
		return result, networkOr(ErrSubmission, err)
	}

	if !i.conf.AwaitConfirmation {
		log.Info("initialize submitted")
		return result, nil
	}

	if err := i.awaitConfirmation(ctx, result.Signature); err != nil {
		return result, err
	}
	result.Confirmed = true

	log.Info("initialize confirmed")
	return result, nil
}

func (i *Initializer) deriveAccounts(authority ed25519.PublicKey, result *Result) (*taker.InitializeInstructionAccounts, error) {
	var err error
	result.Contract, result.ContractBump, err = taker.GetContractAddress(authority)
	if err != nil {
		return nil, classify(ErrDerivation, errors.Wrap(err, "contract address"))
	}

	accounts := &taker.InitializeInstructionAccounts{
		Contract:  result.Contract,
		Authority: authority,
		TkrMint:   i.conf.TkrMint,
		TaiMint:   i.conf.TaiMint,
		DaiMint:   i.conf.DaiMint,
	}

	if i.conf.Layout != taker.AccountLayoutFull {
		return accounts, nil
	}

	for _, ata := range []struct {
		name string
		mint ed25519.PublicKey
		dst  *ed25519.PublicKey
	}{
		{"tkr", i.conf.TkrMint, &result.TokenAccounts.Tkr},
		{"tai", i.conf.TaiMint, &result.TokenAccounts.Tai},
		{"dai", i.conf.DaiMint, &result.TokenAccounts.Dai},
	} {
		if ata.mint == nil {
			continue
		}
		*ata.dst, err = token.GetAssociatedAccount(result.Contract, ata.mint)
		if err != nil {
			return nil, classify(ErrDerivation, errors.Wrapf(err, "%s token account", ata.name))
		}
	}

	accounts.TkrToken = result.TokenAccounts.Tkr
	accounts.TaiToken = result.TokenAccounts.Tai
	accounts.DaiToken = result.TokenAccounts.Dai
	return accounts, nil
}

// awaitConfirmation polls the signature status until it reaches the initializer's
// commitment, the transaction fails, or the confirm timeout elapses.
func (i *Initializer) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "awaitConfirmation")
	defer tracer.End()

	ctx, cancel := context.WithTimeout(ctx, i.conf.ConfirmTimeout)
	defer cancel()

	status, err := solana.AwaitSignatureStatus(ctx, i.client, sig, i.commitment)
	if err != nil {
		if ctx.Err() != nil {
			return classify(ErrNetwork, errors.Wrapf(err, "not confirmed within %v", i.conf.ConfirmTimeout))
		}
		return networkOr(ErrNetwork, err)
	}

	if status.ErrorResult != nil {
		if programErr, ok := taker.ProgramErrorFrom(status.ErrorResult); ok {
			return classify(ErrSubmission, errors.WithMessage(status.ErrorResult, programErr.Error()))
		}
		return classify(ErrSubmission, status.ErrorResult)
	}
	return nil
}
