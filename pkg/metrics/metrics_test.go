package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoApplication(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, NewContext(ctx, nil))

	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	txnCtx, end := StartTransaction(ctx, "txn")
	assert.Equal(t, ctx, txnCtx)
	end()

	tracer := TraceMethodCall(ctx, "struct", "method")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.AddAttributes(map[string]interface{}{"key": "value"})
	tracer.OnError(errors.New("failure"))
	tracer.End()
}

func TestWithApplication(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("solend-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	ctx := NewContext(context.Background(), app)

	actual, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, app, actual)

	RecordCount(ctx, "count", 1)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	txnCtx, end := StartTransaction(ctx, "txn")
	defer end()

	tracer := TraceMethodCall(txnCtx, "struct", "method")
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("failure"))
	tracer.End()
}

func TestSummarizeEntry(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "plan built"
	assert.Equal(t, "plan built", summarizeEntry(entry))

	entry = entry.WithFields(logrus.Fields{
		"owner":     "abc",
		"positions": 3,
		"error":     errors.New("stale reserve"),
	})
	entry.Message = "plan built"
	assert.Equal(t, `message="plan built" error="stale reserve" owner="abc" positions=3`, summarizeEntry(entry))
}

func TestLogFormatter(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("solend-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	formatter := NewLogFormatter(app, &logrus.TextFormatter{DisableTimestamp: true})

	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.InfoLevel
	entry.Message = "hello"

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "\n"))
	assert.Contains(t, string(out), "msg=hello")
}
