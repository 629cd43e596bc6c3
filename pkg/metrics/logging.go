package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogFormatter wraps a logrus.Formatter and forwards every entry to New
// Relic. Entries logged with a context carrying a transaction are attached
// to that transaction, otherwise to the application. Unlike the stock
// nrlogrus formatter, the entry's fields are included in the forwarded
// message.
//
// Based off of: https://github.com/newrelic/go-agent/blob/f1942e10f0819e2c854d5d7289eb0dc1c52a00af/v3/integrations/logcontext-v2/nrlogrus/formatter.go
type LogFormatter struct {
	app   *newrelic.Application
	inner logrus.Formatter
}

func NewLogFormatter(app *newrelic.Application, inner logrus.Formatter) *LogFormatter {
	return &LogFormatter{app: app, inner: inner}
}

func (f *LogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	formatted, err := f.inner.Format(e)
	if err != nil {
		return nil, err
	}

	data := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  summarizeEntry(e),
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	b := bytes.NewBuffer(bytes.TrimRight(formatted, "\n"))
	if txn != nil {
		txn.RecordLog(data)
		err = newrelic.EnrichLog(b, newrelic.FromTxn(txn))
	} else {
		f.app.RecordLog(data)
		err = newrelic.EnrichLog(b, newrelic.FromApp(f.app))
	}
	if err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// summarizeEntry renders the message followed by the entry's error and the
// remaining fields in key order.
func summarizeEntry(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "message=%q", e.Message)

	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		fmt.Fprintf(&sb, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(e.Data))
	for key := range e.Data {
		if key != logrus.ErrorKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := json.Marshal(e.Data[key])
		if err != nil {
			value = []byte(fmt.Sprintf("%q", fmt.Sprint(e.Data[key])))
		}
		fmt.Fprintf(&sb, " %s=%s", key, value)
	}

	return sb.String()
}
