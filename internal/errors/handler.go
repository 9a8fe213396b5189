package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types following RFC 7807
const (
	TypeValidation        = "/errors/validation"
	TypeNotFound          = "/errors/not-found"
	TypeMethodNotAllowed  = "/errors/method-not-allowed"
	TypeRateLimit         = "/errors/rate-limit"
	TypeInternal          = "/errors/internal"
	TypeTimeout           = "/errors/timeout"
	TypeSelection         = "/errors/table/selection"
	TypeMethod            = "/errors/table/method"
	TypeTransform         = "/errors/table/transform"
	TypeUnsupportedFormat = "/errors/table/unsupported-format"
	TypeDataCorrupted     = "/errors/table/corrupted"
)

// problemSpec is the HTTP rendering of one ErrorType
type problemSpec struct {
	status int
	typ    string
	title  string
}

var problemSpecs = map[ErrorType]problemSpec{
	ErrTypeSelection:         {http.StatusBadRequest, TypeSelection, "Invalid Column Selection"},
	ErrTypeMethod:            {http.StatusBadRequest, TypeMethod, "Invalid Transform"},
	ErrTypeValidation:        {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	ErrTypeNotFound:          {http.StatusNotFound, TypeNotFound, "File Not Found"},
	ErrTypeUnsupportedFormat: {http.StatusUnsupportedMediaType, TypeUnsupportedFormat, "Unsupported Format"},
	ErrTypeParsing:           {http.StatusUnprocessableEntity, TypeDataCorrupted, "Unreadable Table"},
	ErrTypeTransform:         {http.StatusUnprocessableEntity, TypeTransform, "Transform Not Applicable"},
}

// ErrorHandler renders errors as RFC 7807 problem documents
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds the stack of
// recovered panics to the response and is meant for local debugging only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and responds with its problem document. Client
// errors log at warn, server errors at error.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)
	reqID := middleware.GetReqID(r.Context())
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request was cancelled before the table could be read", r.URL.Path)
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred while processing your request", r.URL.Path)
	}

	ps, ok := problemSpecs[appErr.Type]
	if !ok {
		// storage and config failures are not the client's fault; keep causes private
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			appErr.Message, r.URL.Path).
			WithExtension("error_type", string(appErr.Type))
	}

	problem := NewProblemDetails(ps.status, ps.typ, ps.title, Message(appErr), r.URL.Path).
		WithExtension("error_type", string(appErr.Type))
	if len(appErr.Context) > 0 {
		problem.WithExtension("context", appErr.Context)
	}
	return problem
}

// HandlePanic logs a recovered panic and responds with a 500 problem
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())
	stack := string(debug.Stack())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path).
		WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stack)
	}

	render.Render(w, r, problem)
}

// NotFound responds to unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"No viewer endpoint at this path", r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}

// MethodNotAllowed responds to known routes called with the wrong method.
// The viewer is read-only, so every route only accepts GET.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	render.Render(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed; the viewer is read-only", r.Method), r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}
