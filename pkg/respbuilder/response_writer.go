package respbuilder

import (
	"bytes"
	"net/http"

	"github.com/segmentio/encoding/json"
)

// WriteJSON encodes data before writing the header so an encoding failure still answers with a valid error body.
func WriteJSON(httpStatus int, rw http.ResponseWriter, r *http.Request, data interface{}) {
	tracer := MustExtract(r.Context())

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		httpStatus = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(buf).Encode(Error(r.Context(), ErrUnhandled, err))
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Tracer-ID", tracer.AppTraceID)
	rw.WriteHeader(httpStatus)
	_, _ = rw.Write(buf.Bytes())
}

// WriteError writes the envelope of kind with its mapped status.
func WriteError(rw http.ResponseWriter, r *http.Request, kind ErrKind, err error) {
	WriteJSON(kind.Status(), rw, r, Error(r.Context(), kind, err))
}
