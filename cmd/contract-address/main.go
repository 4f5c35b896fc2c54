package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/taker-protocol/taker-client/pkg/app"
	"github.com/taker-protocol/taker-client/pkg/contract"
	"github.com/taker-protocol/taker-client/pkg/solana/token"
)

type command struct {
	inspector *contract.Inspector
	conf      *contract.Config
}

func (c *command) Init(config app.BaseConfig, _ *newrelic.Application) error {
	var err error
	c.conf, err = contract.LoadConfig(context.Background(), contract.WithEnvConfigs(), contract.RequireAuthority)
	if err != nil {
		return err
	}

	commitment, err := config.SolanaCommitment()
	if err != nil {
		return err
	}

	// Derivation only, the client is never called.
	client, err := config.NewSolanaClient()
	if err != nil {
		return err
	}

	c.inspector, err = contract.NewInspector(c.conf, client, commitment)
	return err
}

func (c *command) Execute(_ context.Context) error {
	address, bump, err := c.inspector.ContractAddress()
	if err != nil {
		return err
	}

	fmt.Printf("The contract address is %s (bump %d)\n", base58.Encode(address), bump)

	for _, mint := range []struct {
		name string
		key  []byte
	}{
		{"TKR", c.conf.TkrMint},
		{"TAI", c.conf.TaiMint},
		{"DAI", c.conf.DaiMint},
	} {
		if mint.key == nil {
			continue
		}

		ata, err := token.GetAssociatedAccount(address, mint.key)
		if err != nil {
			return err
		}
		fmt.Printf("The contract %s token account is %s\n", mint.name, base58.Encode(ata))
	}

	return nil
}

func main() {
	if err := app.Run(&command{}, app.WithAppName("taker-contract-address")); err != nil {
		os.Exit(1)
	}
}
