package clog

import (
	"log/slog"

	"connectrpc.com/connect"
)

// HTTPStatusLevel maps a response status to the level its access line is
// logged at. 499 is a client hanging up and not worth a warning.
func HTTPStatusLevel(status int) slog.Level {
	switch {
	case status >= 100 && status < 400, status == 499:
		return slog.LevelInfo
	case status >= 400 && status < 500:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ConnectCodeLevel maps a connect code to a log level. Denials and bad input
// are expected traffic on a task board and stay at info.
func ConnectCodeLevel(code connect.Code) slog.Level {
	switch code {
	case connect.CodeCanceled,
		connect.CodeInvalidArgument,
		connect.CodeDeadlineExceeded,
		connect.CodeNotFound,
		connect.CodeAlreadyExists,
		connect.CodePermissionDenied,
		connect.CodeFailedPrecondition,
		connect.CodeAborted,
		connect.CodeOutOfRange,
		connect.CodeUnauthenticated:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}
