package main

import (
	"context"
	"fmt"
	"os"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/taker-protocol/taker-client/pkg/app"
	"github.com/taker-protocol/taker-client/pkg/contract"
)

type command struct {
	inspector *contract.Inspector
}

func (c *command) Init(config app.BaseConfig, _ *newrelic.Application) error {
	conf, err := contract.LoadConfig(context.Background(), contract.WithEnvConfigs(), contract.RequireAuthority)
	if err != nil {
		return err
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
	data, err := c.inspector.ContractData(ctx)
	if err != nil {
		return err
	}

	fmt.Println(data.String())
	return nil
}

func main() {
	if err := app.Run(&command{}, app.WithAppName("taker-contract-data")); err != nil {
		os.Exit(1)
	}
}
