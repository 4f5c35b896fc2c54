package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taker-protocol/taker-client/pkg/config"
)

func TestHappyPath(t *testing.T) {
	c := NewConfig(nil)
	_, err := c.Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	expected := "value"
	c.SetValue(expected)
	val, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, val)

	c.ClearValue()
	_, err = c.Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	c.InduceErrors()
	_, err = c.Get(context.Background())
	assert.Equal(t, errDeveloperInduced, err)

	c.StopInducingErrors()
	_, err = c.Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	c.Shutdown()
	_, err = c.Get(context.Background())
	assert.Equal(t, config.ErrShutdown, err)
}

func TestStore(t *testing.T) {
	s := NewStore(map[string]interface{}{"A": "a"})
	source := s.Source()

	val, err := source("A").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", val)

	_, err = source("B").Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)

	s.Set("B", []byte("b"))
	val, err = source("B").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)

	s.Clear("A")
	_, err = source("A").Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)
}
