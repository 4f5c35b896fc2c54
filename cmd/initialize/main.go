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
	initializer *contract.Initializer
}

func (c *command) Init(config app.BaseConfig, _ *newrelic.Application) error {
	conf, err := contract.LoadConfig(context.Background(), contract.WithEnvConfigs(), contract.InitializeRequirements)
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

	c.initializer, err = contract.NewInitializer(conf, client, commitment)
	return err
}

func (c *command) Execute(ctx context.Context) error {
	result, err := c.initializer.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Signature.String())
	fmt.Println("Success")
	return nil
}

func main() {
	if err := app.Run(&command{}, app.WithAppName("taker-initialize")); err != nil {
		os.Exit(1)
	}
}
