package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Run("json format emits JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "json", &buf).Info("hello")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("text is the default format", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "whatever", &buf).Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("debug level passes debug records", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("debug", "text", &buf).Debug("noisy")
		assert.Contains(t, buf.String(), "msg=noisy")
	})

	t.Run("unknown level degrades to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := newLogger("verbose", "text", &buf)
		log.Debug("hidden")
		log.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}
