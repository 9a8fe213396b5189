package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/table/rows", nil)

	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"selection", NewSelectionError("column index 9 is out of range"), http.StatusBadRequest, TypeSelection},
		{"method", NewMethodError("unknown transform"), http.StatusBadRequest, TypeMethod},
		{"transform", NewTransformError(`column "name" is not numeric`), http.StatusUnprocessableEntity, TypeTransform},
		{"validation", NewAppValidationError("limit must be positive"), http.StatusBadRequest, TypeValidation},
		{"not found", NewNotFoundError("x.csv", nil), http.StatusNotFound, TypeNotFound},
		{"unsupported", NewUnsupportedFormatError(".txt", nil), http.StatusUnsupportedMediaType, TypeUnsupportedFormat},
		{"parsing", NewParsingError("bad csv", errors.New("quote")), http.StatusUnprocessableEntity, TypeDataCorrupted},
		{"storage", NewStorageError("write failed", nil), http.StatusInternalServerError, TypeInternal},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, "/api/table/rows", p.Instance)
		})
	}
}

func TestHandleError_WritesProblemJSON(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/table/rows?columns=9", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewSelectionError("column index 9 is out of range"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeSelection, body["type"])
	assert.Equal(t, "column index 9 is out of range", body["detail"])
	assert.Equal(t, "SELECTION", body["error_type"])
	assert.Contains(t, body, "trace_id")
}

func TestHandleError_NilIsNoop(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	h := newTestHandler()
	mw := NewErrorMiddleware(h, slog.New(slog.NewTextHandler(io.Discard, nil)))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeInternal)
}

func TestErrorMiddleware_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	tests := []struct {
		name   string
		next   http.HandlerFunc
		status float64
		level  string
	}{
		{"ok", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{}")) }, 200, "INFO"},
		{"client error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) }, 400, "WARN"},
		{"panic", func(w http.ResponseWriter, r *http.Request) { panic("kaboom") }, 500, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			mw.Handler(tt.next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?limit=5", nil))

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
			assert.Equal(t, "http request", entry["msg"])
			assert.Equal(t, tt.status, entry["status"])
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "limit=5", entry["query"])
		})
	}
}

func TestHandleError_HidesInternalCauses(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/table/rows", nil)

	p := h.ErrorToProblem(NewStorageError("cannot read table", errors.New("/secret/path: permission denied")), req)
	assert.Equal(t, "cannot read table", p.Detail)
	assert.NotContains(t, p.Extensions, "context")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().MethodNotAllowed(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
	assert.Contains(t, rec.Body.String(), TypeMethodNotAllowed)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/a").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.NotContains(t, body, "detail")
	assert.Equal(t, float64(404), body["status"])
}
