// Package apperror classifies failures so callers can decide how to surface them.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindTransport     Kind = "transport"
	KindBusiness      Kind = "business"
	KindPersistence   Kind = "persistence"
	KindPartialResult Kind = "partial_result"
	KindNotFound      Kind = "not_found"
)

const (
	CodeTokenFailed     = "TOKEN_FAILED"
	CodeTvdbLoginFailed = "TVDB_LOGIN_FAILED"
	CodeJobNotFound     = "JOB_NOT_FOUND"
	CodeInvalidTrigger  = "INVALID_TRIGGER"
	CodeMediaServerDown = "MEDIA_SERVER_UNREACHABLE"
)

// Error is the typed error carried through services and rendered by the HTTP layer.
type Error struct {
	Kind    Kind
	Code    string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind and Code so errors.Is(err, &Error{Kind: KindTransport}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return true
}

// Business is a user-facing failure with a stable code and an HTTP status.
func Business(code string, status int, cause error) *Error {
	return &Error{Kind: KindBusiness, Code: code, Status: status, Message: code, Cause: cause}
}

func Transport(op string, cause error) *Error {
	return &Error{Kind: KindTransport, Status: http.StatusBadGateway, Message: op, Cause: cause}
}

func Persistence(op string, cause error) *Error {
	return &Error{Kind: KindPersistence, Status: http.StatusInternalServerError, Message: op, Cause: cause}
}

func PartialResult(op string, cause error) *Error {
	return &Error{Kind: KindPartialResult, Status: http.StatusOK, Message: op, Cause: cause}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Status: http.StatusNotFound, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the stable code of err, if any.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
