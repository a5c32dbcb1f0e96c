package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCaptureLogger returns a JSON logger writing to buf at debug level.
func newCaptureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := EnrichLogger(newCaptureLogger(&buf), "carts")
	logger.Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "carts", lines[0]["registry"])

	assert.Nil(t, EnrichLogger(nil, "x"))
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := newCaptureLogger(&buf)

	LogRegistryStart(logger, 64)
	LogSpawn(logger, "cart:1", "w-1", "mon-1")
	LogSpawnError(logger, "cart:2", errors.New("limit"))
	LogEvict(logger, "cart:1", "w-1", "normal")
	LogUnknownToken(logger, "mon-x", "w-9")
	LogUnknownMessage(logger, 42)
	LogCoordinatorPanic(logger, "boom", "stack")
	LogJournalError(logger, "cart:1", "spawned", errors.New("disk"))
	LogRegistryStop(logger, 0)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 9)

	assert.Equal(t, "worker registered", lines[1]["msg"])
	assert.Equal(t, "cart:1", lines[1]["name"])
	assert.Equal(t, "mon-1", lines[1]["token"])

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, "limit", lines[2]["error"])

	assert.Equal(t, "worker evicted", lines[3]["msg"])
	assert.Equal(t, "normal", lines[3]["reason"])

	assert.Equal(t, "ERROR", lines[4]["level"])
	assert.Equal(t, "WARN", lines[5]["level"])
	assert.Equal(t, "WARN", lines[7]["level"])
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRegistryStart(nil, 1)
		LogRegistryStop(nil, 1)
		LogSpawn(nil, "", "", "")
		LogSpawnError(nil, "", errors.New("x"))
		LogEvict(nil, "", "", "")
		LogUnknownToken(nil, "", "")
		LogUnknownMessage(nil, nil)
		LogCoordinatorPanic(nil, nil, "")
		LogJournalError(nil, "", "", errors.New("x"))
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), 5*time.Millisecond)
}

