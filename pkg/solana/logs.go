package solana

import (
	"context"
	"crypto/ed25519"
	"sync"

	sdk "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrStreamClosed is returned by LogStream.Recv once the stream has been closed.
var ErrStreamClosed = errors.New("log stream closed")

// LogsNotification is a single transaction's logs that mention a subscribed address.
type LogsNotification struct {
	Slot      uint64
	Signature Signature
	// Err is set when the transaction failed.
	Err  *TransactionError
	Logs []string
}

// LogStream yields log notifications until closed or broken.
type LogStream interface {
	Recv() (*LogsNotification, error)
	Close() error
}

// LogSubscriber opens log subscriptions against a pubsub endpoint.
type LogSubscriber interface {
	// SubscribeProgramLogs streams the logs of every transaction mentioning program.
	//
	// The stream is closed when ctx is cancelled.
	SubscribeProgramLogs(ctx context.Context, program ed25519.PublicKey, commitment Commitment) (LogStream, error)
}

type logSubscriber struct {
	log      *logrus.Entry
	endpoint string
}

// NewLogSubscriber returns a LogSubscriber for a websocket endpoint.
func NewLogSubscriber(endpoint string) LogSubscriber {
	return &logSubscriber{
		log:      logrus.StandardLogger().WithField("type", "solana/logs"),
		endpoint: endpoint,
	}
}

func (s *logSubscriber) SubscribeProgramLogs(ctx context.Context, program ed25519.PublicKey, commitment Commitment) (LogStream, error) {
	if len(program) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}

	conn, err := ws.Connect(ctx, s.endpoint)
	if err != nil {
		return nil, &TransportError{Method: "logsSubscribe", Err: err}
	}

	sub, err := conn.LogsSubscribeMentions(sdk.PublicKeyFromBytes(program), rpc.CommitmentType(commitment.Commitment))
	if err != nil {
		conn.Close()
		return nil, &TransportError{Method: "logsSubscribe", Err: err}
	}

	stream := &logStream{
		log:  s.log.WithField("program", sdk.PublicKeyFromBytes(program).String()),
		conn: conn,
		sub:  sub,
		done: make(chan struct{}),
	}

	go func() {
		select {
		case <-ctx.Done():
			stream.Close()
		case <-stream.done:
		}
	}()

	return stream, nil
}

type logStream struct {
	log  *logrus.Entry
	conn *ws.Client
	sub  *ws.LogSubscription

	closeOnce sync.Once
	done      chan struct{}
}

func (s *logStream) Recv() (*LogsNotification, error) {
	got, err := s.sub.Recv()

	select {
	case <-s.done:
		return nil, ErrStreamClosed
	default:
	}

	if err != nil {
		return nil, &TransportError{Method: "logsNotification", Err: err}
	}
	if got == nil {
		return nil, ErrStreamClosed
	}

	n := &LogsNotification{
		Slot:      got.Context.Slot,
		Signature: Signature(got.Value.Signature),
		Logs:      got.Value.Logs,
	}

	if got.Value.Err != nil {
		n.Err, err = ParseTransactionError(got.Value.Err)
		if err != nil {
			s.log.WithError(err).Warn("failed to parse transaction error")
		}
	}

	return n, nil
}

func (s *logStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.sub.Unsubscribe()
		s.conn.Close()
	})
	return nil
}
