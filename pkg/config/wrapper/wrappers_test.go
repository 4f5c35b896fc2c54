package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taker-protocol/taker-client/pkg/config"
	"github.com/taker-protocol/taker-client/pkg/config/memory"
)

func TestBoolConfig(t *testing.T) {
	defaultValue := true
	mock := memory.NewConfig(nil)
	wrapper := NewBoolConfig(mock, defaultValue)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// Overrides are parsed from raw bytes, as env values are
	mock.SetValue([]byte("false"))
	val, err = wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.False(t, val)

	mock.SetValue(true)
	assert.True(t, wrapper.Get(context.Background()))

	// The last observed config value is returned on a bad value
	mock.SetValue([]byte("false"))
	require.False(t, wrapper.Get(context.Background()))
	mock.SetValue([]byte("maybe"))
	val, err = wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.False(t, val)

	// Return an unsupported source value type
	mock.SetValue(1)
	_, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, ErrUnsuportedConversion, err)
}

func TestDurationConfig(t *testing.T) {
	defaultValue := time.Minute
	mock := memory.NewConfig(nil)
	wrapper := NewDurationConfig(mock, defaultValue)

	assert.Equal(t, defaultValue, wrapper.Get(context.Background()))

	mock.SetValue([]byte("90s"))
	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, val)

	mock.SetValue(time.Hour)
	assert.Equal(t, time.Hour, wrapper.Get(context.Background()))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(context.Background())
	require.Error(t, err)
	assert.Equal(t, time.Hour, val)

	// The default value is returned when the override no longer has a value
	mock.StopInducingErrors()
	mock.ClearValue()
	assert.Equal(t, defaultValue, wrapper.Get(context.Background()))

	mock.SetValue([]byte("soon"))
	_, err = wrapper.GetSafe(context.Background())
	assert.Error(t, err)
}

func TestStringConfig(t *testing.T) {
	defaultValue := "default"
	mock := memory.NewConfig(nil)
	wrapper := NewStringConfig(mock, defaultValue)

	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	mock.SetValue("override")
	assert.Equal(t, "override", wrapper.Get(context.Background()))

	mock.SetValue([]byte("bytes"))
	assert.Equal(t, "bytes", wrapper.Get(context.Background()))

	mock.SetValue(1.5)
	val, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, "bytes", val)
}

func TestRequiredStringConfig(t *testing.T) {
	mock := memory.NewConfig(nil)
	wrapper := NewRequiredStringConfig(mock)

	_, err := wrapper.GetSafe(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	mock.SetValue([]byte("  "))
	_, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	mock.SetValue([]byte("value"))
	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	wrapper.Shutdown()
	_, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, config.ErrShutdown, err)
}
