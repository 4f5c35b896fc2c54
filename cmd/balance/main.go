package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/taker-protocol/taker-client/pkg/app"
	"github.com/taker-protocol/taker-client/pkg/contract"
	"github.com/taker-protocol/taker-client/pkg/pointer"
)

var airdrop = flag.String("airdrop", "", "SOL to request for the owner before reporting balances (devnet only)")

type command struct {
	inspector *contract.Inspector
	airdrop   uint64
}

func (c *command) Init(config app.BaseConfig, _ *newrelic.Application) error {
	conf, err := contract.LoadConfig(context.Background(), contract.WithEnvConfigs(), contract.RequireAuthority)
	if err != nil {
		return err
	}

	if *airdrop != "" {
		if c.airdrop, err = contract.LamportsFromSOL(*airdrop); err != nil {
			return err
		}
	}

	commitment, err := config.SolanaCommitment()
	if err != nil {
		return err
	}

	client, err := config.NewSolanaClient()
	if err != nil {
		return err
	}

	c.inspector, err = contract.NewInspector(conf, client, commitment)
	return err
}

func (c *command) Execute(ctx context.Context) error {
	if c.airdrop > 0 {
		sig, err := c.inspector.Airdrop(ctx, c.airdrop)
		if err != nil {
			return err
		}
		fmt.Printf("Airdrop: %s\n", sig.String())
	}

	balance, err := c.inspector.Balance(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Taker Owner Balance: %d (%s SOL)\n", balance.Lamports, balance.SOL().String())

	tokens, err := c.inspector.TokenBalances(ctx)
	if err != nil {
		return err
	}

	for _, t := range tokens {
		fmt.Printf(
			"Contract token account %s (mint %s): %d (exists: %t)\n",
			base58.Encode(t.Account),
			base58.Encode(t.Mint),
			pointer.OrDefault(t.Amount, 0),
			t.Amount != nil,
		)
	}
	return nil
}

func main() {
	if err := app.Run(&command{}, app.WithAppName("taker-balance")); err != nil {
		os.Exit(1)
	}
}
