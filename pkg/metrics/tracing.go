package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer records a single call as a segment of the New Relic
// transaction carried by the call's context. A nil *MethodTracer is valid
// and discards everything, which is what TraceMethodCall returns when the
// context carries no transaction.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a segment named "<component> <method>".
func TraceMethodCall(ctx context.Context, component, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(component + " " + method),
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t != nil {
		t.seg.AddAttribute(key, value)
	}
}

func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	for key, value := range attributes {
		t.AddAttribute(key, value)
	}
}

// OnError reports err against the enclosing transaction. Nil errors are
// ignored so callers can defer it with their named error.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	t.seg.AddAttribute("error", true)
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t != nil {
		t.seg.End()
	}
}
