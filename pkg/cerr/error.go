package cerr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"

	"github.com/kazz187/taskboard/pkg/clog"
)

type Error struct {
	Code    Code
	Msg     string          // returned to the client together with Code
	Err     error           // logged only
	Stack   string
	Details []proto.Message // returned to the client
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.ConnectCodeLevel(code.ConnectCode()) >= slog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func NewErrorWithDetails(code Code, msg string, underlying error, details []proto.Message) *Error {
	err := NewError(code, msg, underlying)
	err.Details = details
	return err
}

func (e *Error) AddDetailError(err proto.Message) {
	e.Details = append(e.Details, err)
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) AddDetailMessage(msg string) error {
	protoMsg := validate.Violation{
		Message: &msg,
	}
	e.Details = append(e.Details, &protoMsg)
	return e
}

func (e *Error) AddDetailMessageWithCode(msg string, code string) error {
	protoMsg := validate.Violation{
		Message: &msg,
		RuleId:  &code,
	}
	e.Details = append(e.Details, &protoMsg)
	return e
}

// Violation is a single field level validation failure.
type Violation struct {
	Field   string
	Message string
}

// NewValidationError builds an InvalidArgument error carrying one detail per
// violation. The rule id of each detail is the offending field name.
func NewValidationError(msg string, violations []Violation) *Error {
	err := NewError(InvalidArgument, msg, nil)
	for _, v := range violations {
		_ = err.AddDetailMessageWithCode(v.Message, v.Field)
	}
	return err
}

func (e *Error) ConnectError() *connect.Error {
	connectErr := connect.NewError(e.Code.ConnectCode(), errors.New(e.Msg))
	for _, detailMsg := range e.Details {
		detail, err := connect.NewErrorDetail(detailMsg)
		if err != nil {
			continue
		}
		connectErr.AddDetail(detail)
	}
	return connectErr
}

// normalize maps any error into an *Error. Canceled requests and lookups
// become Canceled; everything else is recorded on the request log before
// being returned.
func normalize(ctx context.Context, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return NewError(Canceled, "connection closed", err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.Err == "operation was canceled" {
		return NewError(Canceled, "connection closed", err)
	}

	clog.AddError(ctx, err)
	var cerr *Error
	if errors.As(err, &cerr) {
		if cerr.Stack != "" {
			clog.AddStack(ctx, cerr.Stack)
		}
		return cerr
	}
	return NewError(Unknown, "unknown error", err)
}

// ExtractConnectError converts err into the *connect.Error sent to clients.
// Errors that already are connect errors pass through unchanged.
func ExtractConnectError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if !errors.As(err, new(*Error)) && errors.As(err, &connectErr) {
		clog.AddError(ctx, err)
		return connectErr
	}
	return normalize(ctx, err).ConnectError()
}

// Violations returns the field violations attached by NewValidationError.
func (e *Error) Violations() []Violation {
	var vs []Violation
	for _, d := range e.Details {
		v, ok := d.(*validate.Violation)
		if !ok {
			continue
		}
		vs = append(vs, Violation{Field: v.GetRuleId(), Message: v.GetMessage()})
	}
	return vs
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// CodeOf returns the Code carried by err, or Unknown when err is not an *Error.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return Unknown
}
