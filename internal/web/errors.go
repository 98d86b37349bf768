package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is:
//   - Logged with full technical details and the request id (server-side)
//   - Returned to clients as a JSON ErrorResponse with an action suggestion
//   - Given the status code its kind calls for, see statusFor
//
// Backend errors keep the backend's status and message.

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/autoprep/internal/backend"
	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/logging"
	"github.com/JonMunkholm/autoprep/internal/persist"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Status  int    `json:"-"`
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

// Request errors raised before any service call.
var (
	errInvalidBody   = errors.New("invalid request body")
	errNoCSV         = errors.New("no csv provided")
	errInvalidID     = errors.New("invalid project id")
	errUnknownFormat = errors.New("unknown export format")
)

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		be  *backend.Error
		ve  validator.ValidationErrors
		mbe *http.MaxBytesError
	)

	switch {
	case errors.Is(err, persist.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.As(err, &be):
		if be.Status == 0 {
			return http.StatusBadGateway
		}
		return be.Status
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ve), errors.Is(err, persist.ErrNoDatasetRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errInvalidBody), errors.Is(err, errNoCSV),
		errors.Is(err, errInvalidID), errors.Is(err, errUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyJobs):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// newErrorResponse maps err to its client-facing form.
func newErrorResponse(err error) *ErrorResponse {
	msg := core.MapError(err)
	resp := &ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Status:  statusFor(err),
	}

	var be *backend.Error
	if errors.As(err, &be) && be.Status != 0 {
		resp.Error = be.Message
		if be.Code != "" {
			resp.Code = be.Code
		}
	}
	return resp
}

// respondError logs err and writes the mapped JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := newErrorResponse(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", resp.Status,
		"error", err.Error(),
		"code", resp.Code,
	}
	if resp.Status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if rerr := render.Render(w, r, resp); rerr != nil {
		logger.Error("render error response", "error", rerr)
	}
}
