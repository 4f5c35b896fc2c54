package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taker-protocol/taker-client/pkg/rate"
	"github.com/taker-protocol/taker-client/pkg/retry"
)

func TestSignatureStatus(t *testing.T) {
	zero, one := 0, 1

	testCases := []struct {
		s         SignatureStatus
		confirmed bool
		finalized bool
	}{
		{s: SignatureStatus{Slot: 10, Confirmations: &zero}},
		{s: SignatureStatus{Slot: 10, Confirmations: &zero, ConfirmationStatus: "random"}},
		{s: SignatureStatus{Slot: 10, Confirmations: &zero, ConfirmationStatus: confirmationStatusProcessed}},
		{s: SignatureStatus{Slot: 10, Confirmations: &one}, confirmed: true},
		{s: SignatureStatus{Slot: 10, Confirmations: &zero, ConfirmationStatus: confirmationStatusConfirmed}, confirmed: true},
		{s: SignatureStatus{Slot: 10, Confirmations: &zero, ConfirmationStatus: confirmationStatusFinalized}, confirmed: true, finalized: true},
		{s: SignatureStatus{Slot: 10}, confirmed: true, finalized: true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.confirmed, tc.s.Confirmed())
		assert.Equal(t, tc.finalized, tc.s.Finalized())
		assert.Equal(t, tc.confirmed, tc.s.Reached(CommitmentConfirmed))
		assert.Equal(t, tc.finalized, tc.s.Reached(CommitmentFinalized))
		assert.True(t, tc.s.Reached(CommitmentProcessed))
	}
}

func TestCommitmentFromString(t *testing.T) {
	c, err := CommitmentFromString("confirmed")
	require.NoError(t, err)
	assert.Equal(t, CommitmentConfirmed, c)

	_, err = CommitmentFromString("max")
	assert.Error(t, err)
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	expected := Blockhash{1, 2, 3, 4}
	env := newTestEnv(t, map[string]rpcHandler{
		"getLatestBlockhash": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return map[string]interface{}{
				"context": map[string]interface{}{"slot": 10},
				"value": map[string]interface{}{
					"blockhash":            base58.Encode(expected[:]),
					"lastValidBlockHeight": 100,
				},
			}, nil
		},
	})

	actual, err := env.client.GetLatestBlockhash()
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	// Served from cache within the refresh window.
	actual, err = env.client.GetLatestBlockhash()
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, 1, env.calls("getLatestBlockhash"))
}

func TestClient_GetAccountInfo(t *testing.T) {
	owner := generateKeys(t, 1)[0]
	exists := public(generateKeys(t, 1)[0])

	env := newTestEnv(t, map[string]rpcHandler{
		"getAccountInfo": func(params json.RawMessage) (interface{}, *testRPCError) {
			var args []interface{}
			require.NoError(t, json.Unmarshal(params, &args))
			require.Len(t, args, 2)

			if args[0] != base58.Encode(exists) {
				return map[string]interface{}{"value": nil}, nil
			}

			return map[string]interface{}{
				"value": map[string]interface{}{
					"lamports":   1_000,
					"owner":      base58.Encode(public(owner)),
					"data":       []string{base64.StdEncoding.EncodeToString([]byte("data")), "base64"},
					"executable": false,
				},
			}, nil
		},
	})

	info, err := env.client.GetAccountInfo(exists, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, info.Lamports)
	assert.EqualValues(t, public(owner), info.Owner)
	assert.Equal(t, []byte("data"), info.Data)

	_, err = env.client.GetAccountInfo(public(generateKeys(t, 1)[0]), CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestClient_GetBalance(t *testing.T) {
	env := newTestEnv(t, map[string]rpcHandler{
		"getBalance": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return map[string]interface{}{
				"context": map[string]interface{}{"slot": 10},
				"value":   2_500_000_000,
			}, nil
		},
	})

	balance, err := env.client.GetBalance(public(generateKeys(t, 1)[0]))
	require.NoError(t, err)
	assert.EqualValues(t, 2_500_000_000, balance)
}

func TestClient_SubmitTransaction(t *testing.T) {
	keys := generateKeys(t, 2)
	txn := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), []byte{1}))

	env := newTestEnv(t, map[string]rpcHandler{
		"sendTransaction": func(params json.RawMessage) (interface{}, *testRPCError) {
			var args []json.RawMessage
			require.NoError(t, json.Unmarshal(params, &args))
			require.Len(t, args, 2)

			var encoded string
			require.NoError(t, json.Unmarshal(args[0], &encoded))
			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)

			var submitted Transaction
			require.NoError(t, submitted.Unmarshal(raw))
			return submitted.Signature().String(), nil
		},
	})

	_, err := env.client.SubmitTransaction(txn, CommitmentConfirmed)
	assert.Error(t, err)
	assert.Equal(t, 0, env.calls("sendTransaction"))

	require.NoError(t, txn.Sign(keys[0]))
	sig, err := env.client.SubmitTransaction(txn, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, txn.Signature(), sig)
	assert.Equal(t, 1, env.calls("sendTransaction"))
}

func TestClient_SubmitTransaction_PreflightFailure(t *testing.T) {
	keys := generateKeys(t, 2)
	txn := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), []byte{1}))
	require.NoError(t, txn.Sign(keys[0]))

	env := newTestEnv(t, map[string]rpcHandler{
		"sendTransaction": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return nil, &testRPCError{
				Code:    -32002,
				Message: "Transaction simulation failed",
				Data: map[string]interface{}{
					"err":  map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 300}}},
					"logs": []string{"Program log: Custom program error: 0x12c"},
				},
			}
		},
	})

	_, err := env.client.SubmitTransaction(txn, CommitmentConfirmed)
	require.Error(t, err)

	txErr, ok := err.(*TransactionError)
	require.True(t, ok)
	assert.Equal(t, TransactionErrorInstructionError, txErr.ErrorKey())
	assert.Len(t, txErr.Logs, 1)

	code, ok := GetCustomError(err)
	require.True(t, ok)
	assert.EqualValues(t, 300, code)

	assert.Equal(t, 1, env.calls("sendTransaction"))
}

func TestClient_RetriesServiceErrors(t *testing.T) {
	var attempts int
	env := newTestEnv(t, map[string]rpcHandler{
		"getBalance": func(_ json.RawMessage) (interface{}, *testRPCError) {
			attempts++
			if attempts < 3 {
				return nil, &testRPCError{Code: rpcNodeUnhealthyCode, Message: "node is unhealthy"}
			}
			return map[string]interface{}{"value": 890_880}, nil
		},
	}, WithRetrier(retry.NewRetrier(retry.RetriableErrors(ErrServiceError), retry.Limit(3))))

	lamports, err := env.client.GetBalance(public(generateKeys(t, 1)[0]))
	require.NoError(t, err)
	assert.EqualValues(t, 890_880, lamports)
	assert.Equal(t, 3, attempts)
}

func TestClient_RequestAirdrop(t *testing.T) {
	account := public(generateKeys(t, 1)[0])
	expected := Signature{9, 8, 7}

	env := newTestEnv(t, map[string]rpcHandler{
		"requestAirdrop": func(params json.RawMessage) (interface{}, *testRPCError) {
			var args []interface{}
			require.NoError(t, json.Unmarshal(params, &args))
			require.Len(t, args, 3)
			assert.Equal(t, base58.Encode(account), args[0])
			assert.EqualValues(t, 1_000_000_000, args[1])

			return base58.Encode(expected[:]), nil
		},
	})

	sig, err := env.client.RequestAirdrop(account, 1_000_000_000, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, expected, sig)

	env = newTestEnv(t, map[string]rpcHandler{
		"requestAirdrop": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return base58.Encode(make([]byte, 64)), nil
		},
	})
	_, err = env.client.RequestAirdrop(account, 1, CommitmentConfirmed)
	assert.Error(t, err)
}

func TestAwaitSignatureStatus(t *testing.T) {
	var polls int
	env := newTestEnv(t, map[string]rpcHandler{
		"getSignatureStatuses": func(_ json.RawMessage) (interface{}, *testRPCError) {
			polls++
			switch polls {
			case 1:
				return map[string]interface{}{"value": []interface{}{nil}}, nil
			case 2:
				return map[string]interface{}{"value": []interface{}{
					map[string]interface{}{"slot": 10, "confirmations": 0, "confirmationStatus": "processed", "err": nil},
				}}, nil
			default:
				return map[string]interface{}{"value": []interface{}{
					map[string]interface{}{"slot": 11, "confirmations": 1, "confirmationStatus": "confirmed", "err": nil},
				}}, nil
			}
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := AwaitSignatureStatus(ctx, env.client, Signature{1}, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 11, status.Slot)
	assert.Nil(t, status.ErrorResult)
	assert.Equal(t, 3, env.calls("getSignatureStatuses"))
}

func TestAwaitSignatureStatus_Failed(t *testing.T) {
	env := newTestEnv(t, map[string]rpcHandler{
		"getSignatureStatuses": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return map[string]interface{}{"value": []interface{}{
				map[string]interface{}{
					"slot":               10,
					"confirmations":      0,
					"confirmationStatus": "processed",
					"err":                map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 302}}},
				},
			}}, nil
		},
	})

	status, err := AwaitSignatureStatus(context.Background(), env.client, Signature{1}, CommitmentFinalized)
	require.NoError(t, err)
	require.NotNil(t, status.ErrorResult)

	code, ok := GetCustomError(status.ErrorResult)
	require.True(t, ok)
	assert.EqualValues(t, 302, code)
}

func TestAwaitSignatureStatus_ContextDone(t *testing.T) {
	env := newTestEnv(t, map[string]rpcHandler{
		"getSignatureStatuses": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return map[string]interface{}{"value": []interface{}{nil}}, nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := AwaitSignatureStatus(ctx, env.client, Signature{1}, CommitmentConfirmed)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, env.calls("getSignatureStatuses"), 1)
}

func TestClient_RateLimited(t *testing.T) {
	env := newTestEnv(t, map[string]rpcHandler{
		"getBalance": func(_ json.RawMessage) (interface{}, *testRPCError) {
			return map[string]interface{}{"value": 1}, nil
		},
	},
		WithRateLimiter(rate.NewLocalRateLimiter(1)),
		WithRetrier(retry.NewRetrier(retry.Limit(1))),
	)

	account := public(generateKeys(t, 1)[0])

	_, err := env.client.GetBalance(account)
	require.NoError(t, err)

	_, err = env.client.GetBalance(account)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsTransportError(err))
	assert.Equal(t, 1, env.calls("getBalance"))
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	c := New(endpoint, WithRetrier(retry.NewRetrier(retry.Limit(1))))

	_, err := c.GetLatestBlockhash()
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

type testRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcHandler func(params json.RawMessage) (interface{}, *testRPCError)

type testEnv struct {
	client Client

	mu    sync.Mutex
	count map[string]int
}

func newTestEnv(t *testing.T, handlers map[string]rpcHandler, opts ...Option) *testEnv {
	env := &testEnv{count: make(map[string]int)}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int             `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		env.mu.Lock()
		env.count[req.Method]++
		env.mu.Unlock()

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}

		handler, ok := handlers[req.Method]
		if !ok {
			resp["error"] = testRPCError{Code: -32601, Message: "Method not found"}
		} else if result, rpcErr := handler(req.Params); rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	env.client = New(server.URL, opts...)
	return env
}

func (e *testEnv) calls(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count[method]
}
