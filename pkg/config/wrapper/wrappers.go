package wrapper

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/taker-protocol/taker-client/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

type converter[T any] func(v interface{}) (T, error)

// typedConfig is a utility wrapper converting the raw value of a config to T.
type typedConfig[T any] struct {
	override     config.Config
	defaultValue T
	required     bool
	convert      converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

func newTypedConfig[T any](override config.Config, defaultValue T, required bool, convert converter[T]) *typedConfig[T] {
	return &typedConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		required:     required,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value. Required configs report
// config.ErrNoValue instead of falling back to the default.
func (c *typedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)
	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()
	if err == config.ErrNoValue {
		if c.required {
			return c.defaultValue, config.ErrNoValue
		}
		c.stateMu.Lock()
		c.lastValue = c.defaultValue
		c.stateMu.Unlock()
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return lastValue, err
	}

	c.stateMu.Lock()
	c.lastValue = newValue
	c.stateMu.Unlock()
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *typedConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *typedConfig[T]) Shutdown() {
	c.override.Shutdown()
}

// NewBoolConfig returns a new bool config utility wrapper
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newTypedConfig(override, defaultValue, false, toBool)
}

// NewDurationConfig returns a new duration config utility wrapper
func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return newTypedConfig(override, defaultValue, false, toDuration)
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newTypedConfig(override, defaultValue, false, toString)
}

// NewRequiredStringConfig returns a string config utility wrapper whose GetSafe
// fails with config.ErrNoValue when no value is set. Blank values count as unset.
func NewRequiredStringConfig(override config.Config) config.String {
	return newTypedConfig(override, "", true, func(v interface{}) (string, error) {
		s, err := toString(v)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "", config.ErrNoValue
		}
		return s, nil
	})
}

func toBool(v interface{}) (bool, error) {
	switch v := v.(type) {
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(v)))
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case bool:
		return v, nil
	default:
		return false, ErrUnsuportedConversion
	}
}

func toDuration(v interface{}) (time.Duration, error) {
	switch v := v.(type) {
	case []byte:
		return time.ParseDuration(strings.TrimSpace(string(v)))
	case string:
		return time.ParseDuration(strings.TrimSpace(v))
	case time.Duration:
		return v, nil
	default:
		return 0, ErrUnsuportedConversion
	}
}

func toString(v interface{}) (string, error) {
	switch v := v.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	default:
		return "", ErrUnsuportedConversion
	}
}
