package solana

import (
	"net"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

type Environment string

const (
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
)

// WebsocketURL returns the pubsub endpoint that pairs with an RPC endpoint. Explicit
// ports are incremented by one, matching how validators expose the two services.
func WebsocketURL(rpcEndpoint string) (string, error) {
	u, err := url.Parse(rpcEndpoint)
	if err != nil {
		return "", errors.Wrap(err, "invalid rpc endpoint")
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
		return u.String(), nil
	default:
		return "", errors.Errorf("unsupported rpc scheme %q", u.Scheme)
	}

	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return "", errors.Wrap(err, "invalid rpc port")
		}
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(p+1))
	}

	return u.String(), nil
}
