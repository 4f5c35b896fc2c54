package app

import (
	"time"

	"github.com/spf13/viper"

	"github.com/taker-protocol/taker-client/pkg/solana"
)

// BaseConfig contains the base configuration for commands.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is either json or text.
	LogFormat string `mapstructure:"log_format"`

	AppName string `mapstructure:"app_name"`

	SolanaRPCURL string `mapstructure:"solana_rpc_url"`
	// SolanaSubURL is the pubsub endpoint. When empty, it is derived from SolanaRPCURL.
	SolanaSubURL string `mapstructure:"solana_sub_url"`

	// Commitment used for reads, preflight and confirmation.
	Commitment string `mapstructure:"commitment"`

	// SkipPreflight disables transaction simulation before submission.
	SkipPreflight bool `mapstructure:"skip_preflight"`

	// RPCRateLimit is the per method request rate towards the RPC node, in
	// requests per second. Zero disables limiting.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	// Metrics configuration across many providers
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = BaseConfig{
	LogLevel:  "info",
	LogFormat: "json",

	SolanaRPCURL: string(solana.EnvironmentDev),

	Commitment: "confirmed",

	RPCRateLimit: 10,

	ShutdownGracePeriod: 10 * time.Second,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("log_format", "LOG_FORMAT")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("solana_rpc_url", "SOLANA_RPC_URL")
	_ = viper.BindEnv("solana_sub_url", "SOLANA_SUB_URL")
	_ = viper.BindEnv("commitment", "SOLANA_COMMITMENT")
	_ = viper.BindEnv("skip_preflight", "SOLANA_SKIP_PREFLIGHT")
	_ = viper.BindEnv("rpc_rate_limit", "SOLANA_RPC_RATE_LIMIT")

	_ = viper.BindEnv("shutdown_grace_period", "SHUTDOWN_GRACE_PERIOD")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}

// SolanaCommitment returns the configured commitment level.
func (c BaseConfig) SolanaCommitment() (solana.Commitment, error) {
	return solana.CommitmentFromString(c.Commitment)
}

// SolanaSubscriptionURL returns the pubsub endpoint, deriving it from the RPC
// endpoint if it was not set explicitly.
func (c BaseConfig) SolanaSubscriptionURL() (string, error) {
	if len(c.SolanaSubURL) > 0 {
		return c.SolanaSubURL, nil
	}
	return solana.WebsocketURL(c.SolanaRPCURL)
}
