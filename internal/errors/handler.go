package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Common error types following RFC 7807
const (
	TypeValidation   = "/errors/validation"
	TypeNotFound     = "/errors/not-found"
	TypeUnauthorized = "/errors/unauthorized"
	TypeForbidden    = "/errors/forbidden"
	TypeRateLimit    = "/errors/rate-limit"
	TypeInternal     = "/errors/internal"
	TypeServiceDown  = "/errors/service-unavailable"
	TypeTimeout      = "/errors/timeout"
	TypeConflict     = "/errors/conflict"
)

// Domain-specific error types
const (
	TypeDatasetNotFound = "/errors/dataset/not-found"
	TypeDatasetCorrupt  = "/errors/dataset/corrupted"
	TypeStoreFailure    = "/errors/store/failure"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	switch {
	case strings.Contains(err.Error(), "not found"):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeNotFound,
			"Resource Not Found",
			err.Error(),
			r.URL.Path,
		)

	case strings.Contains(err.Error(), "unauthorized"):
		return NewProblemDetails(
			http.StatusUnauthorized,
			TypeUnauthorized,
			"Unauthorized",
			"Authentication required to access this resource",
			r.URL.Path,
		)

	case strings.Contains(err.Error(), "rate limit"):
		return NewProblemDetails(
			http.StatusTooManyRequests,
			TypeRateLimit,
			"Rate Limit Exceeded",
			"Too many requests. Please try again later.",
			r.URL.Path,
		).WithExtension("retry_after", 60)

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			r.URL.Path,
		)
	}
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "INVALID_PARAMETER", "MISSING_PARAMETER":
		problemType = TypeValidation
	case "NOT_FOUND", "DATASET_NOT_FOUND", "AREA_NOT_FOUND":
		problemType = TypeNotFound
	case "UNAUTHORIZED":
		problemType = TypeUnauthorized
	case "FORBIDDEN":
		problemType = TypeForbidden
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	case "STORE_ERROR":
		problemType = TypeStoreFailure
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", string(debug.Stack()))
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}
