package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLevelsAndContextFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info")

	ctx := WithLogger(context.Background(), map[string]interface{}{"run_id": "r-1"})
	DebugLog(ctx, "hidden %d", 1)
	InfoLog(ctx, "applied %d adjustments", 3)
	WarnLog(context.Background(), "no context fields")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "applied 3 adjustments", entries[0]["message"])
	assert.Equal(t, "r-1", entries[0]["run_id"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.NotContains(t, entries[1], "run_id")
}

func TestErrorLogAttachesError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")

	ErrorLog(context.Background(), "persist failed: %v", errors.New("boom"))
	ErrorLog(context.Background(), "plain %s", "message")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0]["error"])
	assert.Equal(t, "persist failed: boom", entries[0]["message"])
	assert.Equal(t, "plain message", entries[1]["message"])
}

func TestSetOutputBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "loud")

	DebugLog(context.Background(), "dropped")
	InfoLog(context.Background(), "kept")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["message"])
}
