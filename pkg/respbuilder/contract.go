package respbuilder

import "net/http"

type ErrKind int64

const (
	ErrUnhandled ErrKind = iota + 1
	ErrValidation
	ErrResourceNotFound
	ErrUpstreamRejected
	ErrUnavailable
)

// Reason is the public face of an ErrKind.
type Reason struct {
	Code       string
	Message    string
	HTTPStatus int
}

var ReasonMap = map[ErrKind]Reason{
	ErrUnhandled:        {Code: "01", Message: "unhandled error", HTTPStatus: http.StatusInternalServerError},
	ErrValidation:       {Code: "02", Message: "error validation", HTTPStatus: http.StatusBadRequest},
	ErrResourceNotFound: {Code: "04", Message: "resource not found", HTTPStatus: http.StatusNotFound},
	ErrUpstreamRejected: {Code: "06", Message: "rejected by firebase", HTTPStatus: http.StatusUnprocessableEntity},
	ErrUnavailable:      {Code: "07", Message: "messaging is not available", HTTPStatus: http.StatusServiceUnavailable},
}

// Status returns the http status of the kind, 500 for unknown kinds.
func (k ErrKind) Status() int {
	if reason, ok := ReasonMap[k]; ok {
		return reason.HTTPStatus
	}

	return http.StatusInternalServerError
}

// ErrorEntity contain code, message, debug (*if applicable) and trace id.
type ErrorEntity struct {
	Code    string `json:"error_code"`
	Message string `json:"error_description"`
	Debug   string `json:"debug,omitempty"`
	TraceID string `json:"trace_id"`
}

// HTTPError is the body of every non 2xx response: {"error": {...}}.
type HTTPError struct {
	Err ErrorEntity `json:"error"`
}

func (e HTTPError) Error() string {
	return e.Err.Message + ": " + e.Err.Debug
}

// HTTPSuccess success response always wrap in data key.
type HTTPSuccess struct {
	TraceID string      `json:"trace_id"`
	Data    interface{} `json:"data"`
}
