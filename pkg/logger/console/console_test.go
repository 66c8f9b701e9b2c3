package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Format: "json", Output: &buf})

	l.Info("hello", "kind", "entities")
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"kind":"entities"`)
	assert.NotContains(t, out, "hidden")
}

func TestConsoleLoggerDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Debug: true, Format: "logfmt", Output: &buf})

	l.Debug("visible", "n", 3)

	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "n=3")
}
