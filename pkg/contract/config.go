package contract

import (
	"context"
	"crypto/ed25519"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/taker-protocol/taker-client/pkg/app"
	"github.com/taker-protocol/taker-client/pkg/config"
	"github.com/taker-protocol/taker-client/pkg/config/env"
	"github.com/taker-protocol/taker-client/pkg/config/wrapper"
	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
)

const (
	OwnerKeypairConfigEnvName = "TAKER_OWNER_KEYPAIR"

	TkrMintConfigEnvName = "TKR_MINT_ADDRESS"
	TaiMintConfigEnvName = "TAI_MINT_ADDRESS"
	DaiMintConfigEnvName = "DAI_MINT_ADDRESS"
	NFTMintConfigEnvName = "NFT_MINT_ADDRESS"

	ProgramAddressConfigEnvName = "TAKER_PROGRAM_ADDRESS"
	IDLPathConfigEnvName        = "TAKER_IDL_PATH"

	ContractSeedConfigEnvName = "TAKER_CONTRACT_SEED"

	AccountLayoutConfigEnvName = "TAKER_ACCOUNT_LAYOUT"
	defaultAccountLayout       = string(taker.AccountLayoutFull)

	AwaitConfirmationConfigEnvName = "TAKER_AWAIT_CONFIRMATION"
	defaultAwaitConfirmation       = true

	ConfirmTimeoutConfigEnvName = "TAKER_CONFIRM_TIMEOUT"
	defaultConfirmTimeout       = 60 * time.Second
)

// Requirement selects the configuration a command cannot run without.
type Requirement uint8

const (
	RequireAuthority Requirement = 1 << iota
	RequireMints
	RequireNFTMint
)

// InitializeRequirements are the keys needed to build and sign initialize.
const InitializeRequirements = RequireAuthority | RequireMints

type conf struct {
	ownerKeypair config.String

	tkrMint config.String
	taiMint config.String
	daiMint config.String
	nftMint config.String

	programAddress config.String
	idlPath        config.String
	contractSeed   config.String
	accountLayout  config.String

	awaitConfirmation config.Bool
	confirmTimeout    config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return WithSource(env.Source)
}

// WithSource returns configuration resolved by source
func WithSource(source config.Source) ConfigProvider {
	return func() *conf {
		return &conf{
			ownerKeypair: wrapper.NewRequiredStringConfig(source(OwnerKeypairConfigEnvName)),

			tkrMint: wrapper.NewRequiredStringConfig(source(TkrMintConfigEnvName)),
			taiMint: wrapper.NewRequiredStringConfig(source(TaiMintConfigEnvName)),
			daiMint: wrapper.NewRequiredStringConfig(source(DaiMintConfigEnvName)),
			nftMint: wrapper.NewRequiredStringConfig(source(NFTMintConfigEnvName)),

			programAddress: wrapper.NewStringConfig(source(ProgramAddressConfigEnvName), ""),
			idlPath:        wrapper.NewStringConfig(source(IDLPathConfigEnvName), ""),
			contractSeed:   wrapper.NewStringConfig(source(ContractSeedConfigEnvName), ""),
			accountLayout:  wrapper.NewStringConfig(source(AccountLayoutConfigEnvName), defaultAccountLayout),

			awaitConfirmation: wrapper.NewBoolConfig(source(AwaitConfirmationConfigEnvName), defaultAwaitConfirmation),
			confirmTimeout:    wrapper.NewDurationConfig(source(ConfirmTimeoutConfigEnvName), defaultConfirmTimeout),
		}
	}
}

// Config is the resolved and validated configuration of the taker commands.
type Config struct {
	Authority ed25519.PrivateKey

	TkrMint ed25519.PublicKey
	TaiMint ed25519.PublicKey
	DaiMint ed25519.PublicKey
	// NFTMint is optional unless RequireNFTMint is requested.
	NFTMint ed25519.PublicKey

	Program ed25519.PublicKey

	// ContractSeed is the initialize argument. A fresh one is generated per run
	// when not configured.
	ContractSeed ed25519.PublicKey

	Layout taker.AccountLayout

	AwaitConfirmation bool
	ConfirmTimeout    time.Duration
}

// AuthorityPublicKey returns the public half of the authority key pair.
func (c *Config) AuthorityPublicKey() ed25519.PublicKey {
	if c.Authority == nil {
		return nil
	}
	return c.Authority.Public().(ed25519.PublicKey)
}

var loadFile = app.LoadFile

// LoadConfig resolves and validates configuration. Every missing required key is
// reported in a single ErrConfigMissing error. Nothing here touches the network.
func LoadConfig(ctx context.Context, provider ConfigProvider, required Requirement) (*Config, error) {
	c := provider()

	var missing []string
	get := func(name string, value config.String, isRequired bool) string {
		v, err := value.GetSafe(ctx)
		v = strings.TrimSpace(v)
		if (err != nil || len(v) == 0) && isRequired {
			missing = append(missing, name)
		}
		return v
	}

	ownerKeypair := get(OwnerKeypairConfigEnvName, c.ownerKeypair, required&RequireAuthority != 0)
	tkrMint := get(TkrMintConfigEnvName, c.tkrMint, required&RequireMints != 0)
	taiMint := get(TaiMintConfigEnvName, c.taiMint, required&RequireMints != 0)
	daiMint := get(DaiMintConfigEnvName, c.daiMint, required&RequireMints != 0)
	nftMint := get(NFTMintConfigEnvName, c.nftMint, required&RequireNFTMint != 0)
	programAddress := get(ProgramAddressConfigEnvName, c.programAddress, false)
	idlPath := get(IDLPathConfigEnvName, c.idlPath, false)
	contractSeed := get(ContractSeedConfigEnvName, c.contractSeed, false)

	if len(missing) > 0 {
		return nil, classifyf(ErrConfigMissing, "%s not set", strings.Join(missing, ", "))
	}

	var err error
	result := &Config{}

	result.AwaitConfirmation, err = c.awaitConfirmation.GetSafe(ctx)
	if err != nil {
		return nil, classify(ErrConfigInvalid, errors.Wrap(err, AwaitConfirmationConfigEnvName))
	}

	result.ConfirmTimeout, err = c.confirmTimeout.GetSafe(ctx)
	if err != nil {
		return nil, classify(ErrConfigInvalid, errors.Wrap(err, ConfirmTimeoutConfigEnvName))
	}
	if result.ConfirmTimeout <= 0 {
		return nil, classifyf(ErrConfigInvalid, "%s must be positive", ConfirmTimeoutConfigEnvName)
	}

	if len(ownerKeypair) > 0 {
		result.Authority, err = solana.KeypairFromBase58(ownerKeypair)
		if err != nil {
			return nil, classify(ErrConfigInvalid, errors.Wrap(err, OwnerKeypairConfigEnvName))
		}
	}

	for _, m := range []struct {
		name  string
		value string
		dst   *ed25519.PublicKey
	}{
		{TkrMintConfigEnvName, tkrMint, &result.TkrMint},
		{TaiMintConfigEnvName, taiMint, &result.TaiMint},
		{DaiMintConfigEnvName, daiMint, &result.DaiMint},
		{NFTMintConfigEnvName, nftMint, &result.NFTMint},
		{ContractSeedConfigEnvName, contractSeed, &result.ContractSeed},
	} {
		if len(m.value) == 0 {
			continue
		}
		*m.dst, err = solana.PublicKeyFromBase58(m.value)
		if err != nil {
			return nil, classify(ErrConfigInvalid, errors.Wrap(err, m.name))
		}
	}

	result.Program, err = resolveProgram(programAddress, idlPath)
	if err != nil {
		return nil, err
	}

	layout, err := c.accountLayout.GetSafe(ctx)
	if err == nil {
		result.Layout, err = taker.ParseAccountLayout(layout)
	}
	if err != nil {
		return nil, classify(ErrConfigInvalid, errors.Wrap(err, AccountLayoutConfigEnvName))
	}

	return result, nil
}

// resolveProgram picks the program id from an explicit address, then the deploy
// IDL, then the built in default.
func resolveProgram(address, idlPath string) (ed25519.PublicKey, error) {
	if len(address) > 0 {
		program, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			return nil, classify(ErrConfigInvalid, errors.Wrap(err, ProgramAddressConfigEnvName))
		}
		return program, nil
	}

	if len(idlPath) > 0 {
		data, err := loadFile(idlPath)
		if err != nil {
			return nil, classify(ErrConfigInvalid, errors.Wrapf(err, "failed to load idl %s", idlPath))
		}

		program, err := taker.LoadProgramIDFromIDL(data)
		if err != nil {
			return nil, classify(ErrConfigInvalid, err)
		}
		return program, nil
	}

	return taker.PROGRAM_ID, nil
}

// Apply points the taker program client at the configured deployment.
func (c *Config) Apply() error {
	if err := taker.SetProgramID(c.Program); err != nil {
		return classify(ErrConfigInvalid, err)
	}
	return nil
}
