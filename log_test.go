package ordertrack

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLogFields_Add(t *testing.T) {
	base := LogFields{"foo": "1", "bar": "2"}
	merged := base.Add(LogFields{"bar": "3", "baz": "4"})

	assert.Equal(t, LogFields{"foo": "1", "bar": "3", "baz": "4"}, merged)
	assert.Equal(t, LogFields{"foo": "1", "bar": "2"}, base, "Add should not mutate the receiver")
}

func TestStdLoggerAdapter(t *testing.T) {
	buf := bytes.NewBuffer([]byte{})
	l := log.New(buf, "", 0)

	logger := &StdLoggerAdapter{
		ErrorLogger: l,
		InfoLogger:  l,
		DebugLogger: l,
		TraceLogger: l,
	}

	logger.Error("some error", errors.New("boom"), LogFields{"bar": "2"})
	logger.Info("some info", LogFields{"bar": "2"})
	logger.Debug("some debug", LogFields{"bar": "2"})
	logger.Trace("some trace", LogFields{"bar": "2"})

	out := buf.String()
	assert.Contains(t, out, `level=ERROR msg="some error"`)
	assert.Contains(t, out, `err=boom`)
	assert.Contains(t, out, `level=INFO  msg="some info" bar=2`)
	assert.Contains(t, out, `level=DEBUG msg="some debug" bar=2`)
	assert.Contains(t, out, `level=TRACE msg="some trace" bar=2`)
}

func TestStdLoggerAdapter_disabled_levels(t *testing.T) {
	buf := bytes.NewBuffer([]byte{})
	l := log.New(buf, "", 0)

	logger := &StdLoggerAdapter{ErrorLogger: l, InfoLogger: l}

	logger.Debug("some debug", nil)
	logger.Trace("some trace", nil)

	assert.Empty(t, buf.String())
}
