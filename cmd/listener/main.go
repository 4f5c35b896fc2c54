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
	listener *contract.Listener
}

func (c *command) Init(config app.BaseConfig, _ *newrelic.Application) error {
	conf, err := contract.LoadConfig(context.Background(), contract.WithEnvConfigs(), 0)
	if err != nil {
		return err
	}

	commitment, err := config.SolanaCommitment()
	if err != nil {
		return err
	}

	subscriber, err := config.NewLogSubscriber()
	if err != nil {
		return err
	}

	c.listener, err = contract.NewListener(conf, subscriber, commitment)
	return err
}

func (c *command) Execute(ctx context.Context) error {
	return c.listener.Run(ctx, func(e contract.ReceivedEvent) {
		fmt.Println(e.Event.String())
	})
}

func main() {
	if err := app.Run(&command{}, app.WithAppName("taker-listener")); err != nil {
		os.Exit(1)
	}
}
