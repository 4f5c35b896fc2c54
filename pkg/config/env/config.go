package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/taker-protocol/taker-client/pkg/config"
	"github.com/taker-protocol/taker-client/pkg/config/wrapper"
)

type conf struct {
	val string
}

// NewConfig returns a config reading the environment variable key, upper cased.
// The variable is read once, at construction.
func NewConfig(key string) config.Config {
	client := &conf{
		val: os.Getenv(strings.ToUpper(key)),
	}

	return client
}

// Source resolves config keys against the process environment.
var Source config.Source = NewConfig

// Get implements Config.Get
func (c *conf) Get(ctx context.Context) (interface{}, error) {
	if len(c.val) == 0 {
		return nil, config.ErrNoValue
	}

	return []byte(c.val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewStringConfig creates a env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewRequiredStringConfig creates a env-based string config that fails when unset
func NewRequiredStringConfig(key string) config.String {
	return wrapper.NewRequiredStringConfig(NewConfig(key))
}

// NewBoolConfig creates a env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

// NewDurationConfig creates a env-based duration config
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
