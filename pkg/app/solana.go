package app

import (
	"github.com/pkg/errors"
	xrate "golang.org/x/time/rate"

	"github.com/taker-protocol/taker-client/pkg/rate"
	"github.com/taker-protocol/taker-client/pkg/solana"
)

// NewSolanaClient returns an RPC client for the configured endpoint.
func (c BaseConfig) NewSolanaClient() (solana.Client, error) {
	if len(c.SolanaRPCURL) == 0 {
		return nil, errors.New("solana rpc url is not configured")
	}

	var limiter rate.Limiter = &rate.NoLimiter{}
	if c.RPCRateLimit > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(c.RPCRateLimit))
	}

	return solana.New(
		c.SolanaRPCURL,
		solana.WithRateLimiter(limiter),
		solana.WithSkipPreflight(c.SkipPreflight),
	), nil
}

// NewLogSubscriber returns a log subscriber for the configured pubsub endpoint.
func (c BaseConfig) NewLogSubscriber() (solana.LogSubscriber, error) {
	endpoint, err := c.SolanaSubscriptionURL()
	if err != nil {
		return nil, err
	}
	return solana.NewLogSubscriber(endpoint), nil
}
