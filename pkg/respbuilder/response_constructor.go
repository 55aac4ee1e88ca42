package respbuilder

import (
	"context"
)

// Error builds the envelope for kind. Unknown kinds hide err.
func Error(ctx context.Context, kind ErrKind, err error) HTTPError {
	traceID := MustExtract(ctx).AppTraceID

	reason, ok := ReasonMap[kind]
	if !ok {
		return HTTPError{Err: ErrorEntity{Code: "XX", Message: "unknown error kind", TraceID: traceID}}
	}

	out := HTTPError{Err: ErrorEntity{
		Code:    reason.Code,
		Message: reason.Message,
		TraceID: traceID,
	}}

	if err != nil {
		out.Err.Debug = err.Error()
	}

	return out
}

func Success(ctx context.Context, data interface{}) HTTPSuccess {
	return HTTPSuccess{
		TraceID: MustExtract(ctx).AppTraceID,
		Data:    data,
	}
}
