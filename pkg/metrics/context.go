package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding the *newrelic.Application.
type NewRelicContextKey struct{}

// NewContext returns a copy of ctx carrying app. A nil app leaves ctx as is.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

// FromContext returns the application stored by NewContext, if any.
func FromContext(ctx context.Context) (*newrelic.Application, bool) {
	app, ok := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return app, ok && app != nil
}

// StartTransaction starts a New Relic transaction named name when ctx
// carries an application. The returned function ends it and is always safe
// to call.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	app, ok := FromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
