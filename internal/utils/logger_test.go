package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(buf *bytes.Buffer) Logger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestSlogLogger_LogRequestLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		bufferLogger(&buf).LogRequest("GET", "/health", tt.status, "1ms", "client_ip", "10.0.0.1")

		entry := lastEntry(t, &buf)
		assert.Equal(t, tt.level, entry["level"])
		assert.Equal(t, "HTTP Request", entry["msg"])
		assert.Equal(t, float64(tt.status), entry["status_code"])
		assert.Equal(t, "10.0.0.1", entry["client_ip"])
	}
}

func TestSlogLogger_LogErrorAndWith(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).With("request_id", "req-1").LogError(errors.New("boom"), "failed", "form_id", "form-1")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "form-1", entry["form_id"])
}

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	fallback := bufferLogger(&buf)

	router := gin.New()
	router.Use(RequestIDMiddleware(), ContextLogger(fallback))
	router.GET("/ping", func(c *gin.Context) {
		GetLoggerFromContext(c, nil).Info("pong")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	entry := lastEntry(t, &buf)
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/ping", entry["path"])

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, fallback, GetLoggerFromContext(c, fallback))
}

func TestToSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.New(slog.NewJSONHandler(&buf, nil))
	assert.Same(t, inner, ToSlogLogger(NewSlogLogger(inner)))
}
