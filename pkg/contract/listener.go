package contract

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/taker-protocol/taker-client/pkg/metrics"
	"github.com/taker-protocol/taker-client/pkg/retry"
	"github.com/taker-protocol/taker-client/pkg/retry/backoff"
	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
)

const (
	reconnectBaseDelay = 500 * time.Millisecond
	reconnectMaxDelay  = 30 * time.Second
)

// ReceivedEvent is a program event observed in a transaction's logs.
type ReceivedEvent struct {
	Slot      uint64
	Signature solana.Signature
	Event     taker.Event
}

// EventHandler is invoked sequentially for every received event.
type EventHandler func(event ReceivedEvent)

// Listener streams the events emitted by the taker program.
type Listener struct {
	log        *logrus.Entry
	subscriber solana.LogSubscriber
	program    ed25519.PublicKey
	commitment solana.Commitment

	// IncludeFailed delivers events from transactions that failed. Failed
	// transactions have their state changes rolled back.
	IncludeFailed bool
}

func NewListener(conf *Config, subscriber solana.LogSubscriber, commitment solana.Commitment) (*Listener, error) {
	if err := conf.Apply(); err != nil {
		return nil, err
	}

	return &Listener{
		log:        logrus.StandardLogger().WithField("type", "contract/listener"),
		subscriber: subscriber,
		program:    conf.Program,
		commitment: commitment,
	}, nil
}

// Run delivers events to handler until ctx is cancelled. Broken subscriptions are
// re-established with backoff. A nil error is returned on cancellation.
func (l *Listener) Run(ctx context.Context, handler EventHandler) error {
	log := l.log.WithFields(logrus.Fields{
		"method":  "Run",
		"program": base58.Encode(l.program),
	})

	err := retry.Loop(
		func() error {
			return l.listen(ctx, log, handler)
		},
		retry.NonRetriableErrors(context.Canceled, context.DeadlineExceeded),
		func(attempts uint, err error) bool {
			log.WithError(err).WithField("attempts", attempts).Warn("log subscription failed, reconnecting")
			return true
		},
		retry.BackoffWithContext(ctx, backoff.BinaryExponential(reconnectBaseDelay), reconnectMaxDelay, 0.1),
	)
	if ctx.Err() != nil {
		log.Debug("listener stopped")
		return nil
	}
	return err
}

// listen consumes a single subscription. It returns nil when a subscription that
// delivered notifications breaks, so the reconnect happens without delay.
func (l *Listener) listen(ctx context.Context, log *logrus.Entry, handler EventHandler) error {
	stream, err := l.subscriber.SubscribeProgramLogs(ctx, l.program, l.commitment)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return networkOr(ErrNetwork, errors.Wrap(err, "failed to subscribe"))
	}
	defer stream.Close()

	log.Info("listening for program events")

	var received bool
	for {
		notification, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if received {
				log.WithError(err).Info("log subscription closed")
				return nil
			}
			return classify(ErrNetwork, err)
		}

		received = true
		l.handle(ctx, log, notification, handler)
	}
}

func (l *Listener) handle(ctx context.Context, log *logrus.Entry, notification *solana.LogsNotification, handler EventHandler) {
	log = log.WithFields(logrus.Fields{
		"slot":      notification.Slot,
		"signature": notification.Signature.String(),
	})

	if notification.Err != nil && !l.IncludeFailed {
		log.WithError(notification.Err).Debug("ignoring failed transaction")
		return
	}

	events, err := taker.ParseEvents(l.program, notification.Logs)
	if err != nil {
		// Events decoded before the failure are still delivered.
		log.WithError(err).Warn("failed to parse program events")
	}

	for _, event := range events {
		log.WithField("event", event.Name()).Debug("event received")
		metrics.RecordCount(ctx, "taker.listener.events", 1)

		handler(ReceivedEvent{
			Slot:      notification.Slot,
			Signature: notification.Signature,
			Event:     event,
		})
	}
}
