package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazz187/taskboard/pkg/clog"
)

type responseReceiverKey struct{}

// responseReceiver collects what a chi handler wants written. Handlers that
// stream their own body leave both fields empty.
type responseReceiver struct {
	response any
	err      error
}

func receiverFrom(ctx context.Context) *responseReceiver {
	rr, _ := ctx.Value(responseReceiverKey{}).(*responseReceiver)
	return rr
}

func SetJSONResponse(ctx context.Context, response any) {
	if rr := receiverFrom(ctx); rr != nil {
		rr.response = response
	}
}

func SetJSONError(ctx context.Context, err error) {
	if rr := receiverFrom(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewConvertConnectErrorChiMiddleware lets chi handlers report results with
// SetJSONResponse / SetJSONError and renders them once the handler returns.
func NewConvertConnectErrorChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := context.WithValue(r.Context(), responseReceiverKey{}, rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			writeResponse(ctx, rw, rr)
		})
	}
}

type httpViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type httpError struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Violations []httpViolation `json:"violations,omitempty"`
}

func writeResponse(ctx context.Context, rw http.ResponseWriter, rr *responseReceiver) {
	if rr.err != nil {
		writeJSONError(ctx, rw, normalize(ctx, rr.err))
		return
	}
	if rr.response == nil {
		return
	}
	buf, err := encode(rr.response)
	if err != nil {
		writeJSONError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(http.StatusOK)
	if _, err := rw.Write(buf); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

func writeJSONError(ctx context.Context, rw http.ResponseWriter, e *Error) {
	body := httpError{Code: e.Code.String(), Message: e.Msg}
	for _, v := range e.Violations() {
		body.Violations = append(body.Violations, httpViolation(v))
	}
	buf, err := encode(body)
	if err != nil {
		buf = []byte(`{"code":"internal","message":"server error"}` + "\n")
		e.Err = errors.Join(e.Err, err)
		clog.AddError(ctx, e)
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(e.Code.HTTPCode())
	if _, err := rw.Write(buf); err != nil {
		e.Err = errors.Join(e.Err, err)
		clog.AddError(ctx, e)
	}
}

func encode(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
