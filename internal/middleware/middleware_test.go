package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/screenpong/internal/testutil"
)

func TestRecoveryWritesPanicResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recovery(logger, PlainPanicHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/scores", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "panic recovered", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "/scores", entry["path"])
}

func TestRecoveryRepanicsAbort(t *testing.T) {
	h := Recovery(testutil.NopLogger(), PlainPanicHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggingCapturesStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/screens/display_1/reset", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST", entry["method"])
	assert.InDelta(t, float64(http.StatusTeapot), entry["status"], 0)
	assert.InDelta(t, 15, entry["size"], 0)
	assert.Equal(t, false, entry["upgraded"])
}

func TestResponseWriterPassThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &ResponseWriter{ResponseWriter: rr, status: http.StatusOK}

	rw.Flush()
	assert.True(t, rr.Flushed)
	assert.Same(t, rr, rw.Unwrap())

	// httptest.ResponseRecorder cannot be hijacked
	_, _, err := rw.Hijack()
	assert.Error(t, err)
	assert.Equal(t, http.StatusOK, rw.Status())
}
