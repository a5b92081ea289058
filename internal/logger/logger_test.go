package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	Info("should be filtered")
	Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	Info("dispatching", KeyFunction, "multiply", KeyArgc, 2)

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))

	assert.Equal(t, "dispatching", record["msg"])
	assert.Equal(t, "multiply", record["function"])
	assert.Equal(t, float64(2), record["argc"])
}

func TestTextFormatFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "text", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	Debug("loaded", KeyTag, "mock", KeyPath, "empty.mock")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG]")
	assert.Contains(t, out, "tag=mock")
	assert.Contains(t, out, "path=empty.mock")
}

func TestInvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	SetLevel("LOUD")

	Info("still info")
	assert.Contains(t, buf.String(), "still info")
}

func TestCallContextFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	cc := NewCallContext("goscript", "multiply")
	ctx := WithContext(t.Context(), cc)

	InfoCtx(ctx, "call finished")

	out := buf.String()
	assert.Contains(t, out, "tag=goscript")
	assert.Contains(t, out, "function=multiply")
	assert.Contains(t, out, "duration_ms=")
}
