package taker

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/taker-protocol/taker-client/pkg/solana/binary"
)

const (
	programDataPrefix = "Program data: "
	programLogPrefix  = "Program log: "
)

var (
	EventContractAllocatedDiscriminator = []byte{
		0x0c, 0x81, 0x50, 0xa0, 0x70, 0xb5, 0x52, 0x60,
	}
	EventContractInitializedDiscriminator = []byte{
		0x98, 0xb5, 0xa2, 0xb4, 0x19, 0xd7, 0x3f, 0xa1,
	}
	EventCalledInitializeDiscriminator = []byte{
		0x89, 0x03, 0x46, 0xb7, 0xdf, 0x33, 0xc9, 0xa5,
	}
)

// Event is a decoded event emitted by the program.
type Event interface {
	Name() string
	String() string
}

// EventContractAllocated is emitted once the contract account has been created.
type EventContractAllocated struct {
	Address ed25519.PublicKey
}

func (e *EventContractAllocated) Name() string { return "EventContractAllocated" }

func (e *EventContractAllocated) String() string {
	return fmt.Sprintf("EventContractAllocated{addr=%s}", base58.Encode(e.Address))
}

// EventContractInitialized is emitted at the end of a successful initialize.
type EventContractInitialized struct{}

func (e *EventContractInitialized) Name() string { return "EventContractInitialized" }

func (e *EventContractInitialized) String() string { return "EventContractInitialized{}" }

// EventCalledInitialize is emitted by program versions that announce the call
// itself. Older versions emit it without a payload, in which case Seed is empty.
type EventCalledInitialize struct {
	Seed []byte
}

func (e *EventCalledInitialize) Name() string { return "CalledInitialize" }

func (e *EventCalledInitialize) String() string {
	return fmt.Sprintf("CalledInitialize{seed=%s}", base58.Encode(e.Seed))
}

// RawEvent is program data with a discriminator this package does not know about.
type RawEvent struct {
	Discriminator []byte
	Data          []byte
}

func (e *RawEvent) Name() string { return "Unknown" }

func (e *RawEvent) String() string {
	return fmt.Sprintf("Unknown{discriminator=%s,data=%s}", hex.EncodeToString(e.Discriminator), hex.EncodeToString(e.Data))
}

// DecodeEvent decodes a serialized event. Unknown discriminators yield a RawEvent.
func DecodeEvent(data []byte) (Event, error) {
	if len(data) < discriminatorSize {
		return nil, ErrInvalidEventData
	}

	var offset int
	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	payload := data[offset:]

	switch {
	case bytes.Equal(discriminator, EventContractAllocatedDiscriminator):
		if len(payload) < ed25519.PublicKeySize {
			return nil, ErrInvalidEventData
		}
		var e EventContractAllocated
		binary.GetKey32(payload, &e.Address, &offset)
		return &e, nil
	case bytes.Equal(discriminator, EventContractInitializedDiscriminator):
		return &EventContractInitialized{}, nil
	case bytes.Equal(discriminator, EventCalledInitializeDiscriminator):
		var e EventCalledInitialize
		if len(payload) > 0 {
			if err := binary.GetBytes(payload, &e.Seed, &offset); err != nil {
				return nil, ErrInvalidEventData
			}
		}
		return &e, nil
	default:
		return &RawEvent{
			Discriminator: discriminator,
			Data:          append([]byte{}, payload...),
		}, nil
	}
}

func isKnownEvent(data []byte) bool {
	if len(data) < discriminatorSize {
		return false
	}
	d := data[:discriminatorSize]
	return bytes.Equal(d, EventContractAllocatedDiscriminator) ||
		bytes.Equal(d, EventContractInitializedDiscriminator) ||
		bytes.Equal(d, EventCalledInitializeDiscriminator)
}

// ParseEvents extracts the events program emitted from a transaction's logs.
//
// Logs are attributed to the program at the top of the invocation stack, so events
// from CPIs into or out of the program are kept apart. Events are read from both
// "Program data:" lines and the "Program log:" lines older runtimes used.
func ParseEvents(program ed25519.PublicKey, logs []string) ([]Event, error) {
	self := base58.Encode(program)

	var events []Event
	var stack []string
	for _, line := range logs {
		if id, ok := parseInvoke(line); ok {
			stack = append(stack, id)
			continue
		}
		if id, ok := parseExit(line); ok {
			if len(stack) > 0 && stack[len(stack)-1] == id {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if len(stack) == 0 || stack[len(stack)-1] != self {
			continue
		}

		switch {
		case strings.HasPrefix(line, programDataPrefix):
			data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programDataPrefix))
			if err != nil {
				continue
			}
			e, err := DecodeEvent(data)
			if err != nil {
				return events, err
			}
			events = append(events, e)
		case strings.HasPrefix(line, programLogPrefix):
			// Plain text logs share this prefix, so only known events are taken.
			data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programLogPrefix))
			if err != nil || !isKnownEvent(data) {
				continue
			}
			e, err := DecodeEvent(data)
			if err != nil {
				return events, err
			}
			events = append(events, e)
		}
	}

	return events, nil
}

// "Program <id> invoke [<depth>]"
func parseInvoke(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "Program" || fields[2] != "invoke" {
		return "", false
	}
	if !isProgramID(fields[1]) || !isInvokeDepth(fields[3]) {
		return "", false
	}
	return fields[1], true
}

// "Program <id> success" or "Program <id> failed: <reason>"
func parseExit(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "Program" || !isProgramID(fields[1]) {
		return "", false
	}
	if fields[2] == "success" || strings.HasPrefix(fields[2], "failed") {
		return fields[1], true
	}
	return "", false
}

func isProgramID(s string) bool {
	decoded, err := base58.Decode(s)
	return err == nil && len(decoded) == ed25519.PublicKeySize
}

func isInvokeDepth(s string) bool {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return false
	}
	_, err := strconv.ParseUint(s[1:len(s)-1], 10, 8)
	return err == nil
}
