package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding the *newrelic.Application.
type NewRelicContextKey struct{}

// NewContext returns a copy of ctx carrying app. A nil app leaves ctx unchanged,
// so metrics become no-ops.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

func fromContext(ctx context.Context) (*newrelic.Application, bool) {
	nr, ok := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return nr, ok && nr != nil
}

// StartTransaction starts a New Relic transaction for a unit of work and returns a
// context carrying it, for use with TraceMethodCall. The returned function ends the
// transaction, noticing err when set.
func StartTransaction(ctx context.Context, name string) (context.Context, func(err error)) {
	nr, ok := fromContext(ctx)
	if !ok {
		return ctx, func(error) {}
	}

	m := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, m), func(err error) {
		if err != nil {
			m.NoticeError(err)
		}
		m.End()
	}
}
