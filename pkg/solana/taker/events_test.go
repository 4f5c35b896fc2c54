package taker

import (
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	addr := generateKeys(t, 1)[0]

	e, err := DecodeEvent(append(append([]byte{}, EventContractAllocatedDiscriminator...), addr...))
	require.NoError(t, err)
	allocated, ok := e.(*EventContractAllocated)
	require.True(t, ok)
	assert.Equal(t, addr, allocated.Address)
	assert.Equal(t, "EventContractAllocated{addr="+base58.Encode(addr)+"}", e.String())

	e, err = DecodeEvent(EventContractInitializedDiscriminator)
	require.NoError(t, err)
	assert.IsType(t, &EventContractInitialized{}, e)

	e, err = DecodeEvent(EventCalledInitializeDiscriminator)
	require.NoError(t, err)
	assert.Empty(t, e.(*EventCalledInitialize).Seed)

	e, err = DecodeEvent(append(append([]byte{}, EventCalledInitializeDiscriminator...), 2, 0, 0, 0, 9, 9))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, e.(*EventCalledInitialize).Seed)

	e, err = DecodeEvent([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)
	raw, ok := e.(*RawEvent)
	require.True(t, ok)
	assert.Equal(t, []byte{9}, raw.Data)

	_, err = DecodeEvent([]byte{1, 2, 3})
	assert.Equal(t, ErrInvalidEventData, err)

	_, err = DecodeEvent(append(append([]byte{}, EventContractAllocatedDiscriminator...), 1, 2))
	assert.Equal(t, ErrInvalidEventData, err)
}

func TestParseEvents(t *testing.T) {
	keys := generateKeys(t, 2)
	program := PROGRAM_ID
	other := base58.Encode(keys[0])
	self := base58.Encode(program)

	allocated := base64.StdEncoding.EncodeToString(append(append([]byte{}, EventContractAllocatedDiscriminator...), keys[1]...))
	initialized := base64.StdEncoding.EncodeToString(EventContractInitializedDiscriminator)
	foreign := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	logs := []string{
		"Program " + self + " invoke [1]",
		"Program log: Instruction: Initialize",
		"Program log: " + allocated,
		"Program " + other + " invoke [2]",
		"Program data: " + foreign,
		"Program " + other + " consumed 2000 of 190000 compute units",
		"Program " + other + " success",
		"Program data: " + initialized,
		"Program log: " + foreign,
		"Program " + self + " consumed 10000 of 200000 compute units",
		"Program " + self + " success",
		"Program data: " + initialized,
	}

	events, err := ParseEvents(program, logs)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, keys[1], events[0].(*EventContractAllocated).Address)
	assert.IsType(t, &EventContractInitialized{}, events[1])

	events, err = ParseEvents(keys[0], logs)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.IsType(t, &RawEvent{}, events[0])

	events, err = ParseEvents(program, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseEvents_FailedInvocation(t *testing.T) {
	self := base58.Encode(PROGRAM_ID)
	initialized := base64.StdEncoding.EncodeToString(EventContractInitializedDiscriminator)

	events, err := ParseEvents(PROGRAM_ID, []string{
		"Program " + self + " invoke [1]",
		"Program " + self + " failed: custom program error: 0x12d",
		"Program data: " + initialized,
	})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseEvents_TextLogsResemblingFrames(t *testing.T) {
	self := base58.Encode(PROGRAM_ID)
	initialized := base64.StdEncoding.EncodeToString(EventContractInitializedDiscriminator)

	events, err := ParseEvents(PROGRAM_ID, []string{
		"Program " + self + " invoke [1]",
		"Program log: invoke [1]",
		"Program log: success",
		"Program " + self + " invoke depth",
		"Program data: " + initialized,
		"Program " + self + " success",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.IsType(t, &EventContractInitialized{}, events[0])
}

func TestParseInvoke(t *testing.T) {
	self := base58.Encode(PROGRAM_ID)

	id, ok := parseInvoke("Program " + self + " invoke [2]")
	require.True(t, ok)
	assert.Equal(t, self, id)

	for _, line := range []string{
		"Program log: invoke [1]",
		"Program " + self + " invoke 1",
		"Program " + self + " invoke []",
		"Program " + self + " invoke [x]",
		"Program " + self + " invoke [1] extra",
	} {
		_, ok := parseInvoke(line)
		assert.False(t, ok, line)
	}
}
