package errors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Code codes.Code

const (
	CodeInvalidArgument  = Code(codes.InvalidArgument)
	CodeNotFound         = Code(codes.NotFound)
	CodeAlreadyExists    = Code(codes.AlreadyExists)
	CodeInternal         = Code(codes.Internal)
	CodeUnauthenticated  = Code(codes.Unauthenticated)
	CodePermissionDenied = Code(codes.PermissionDenied)
	CodeUnavailable      = Code(codes.Unavailable)
)

var code2http = map[Code]int{
	CodeInvalidArgument:  http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeAlreadyExists:    http.StatusConflict,
	CodeInternal:         http.StatusInternalServerError,
	CodeUnauthenticated:  http.StatusUnauthorized,
	CodePermissionDenied: http.StatusForbidden,
	CodeUnavailable:      http.StatusInternalServerError,
}

// Kind is the machine-readable reason carried next to the code, so clients
// can tell apart failures that share a status (e.g. blocked vs. not admin).
type Kind string

const (
	KindUnknown Kind = ""

	KindUnauthenticated       Kind = "Unauthenticated"
	KindInvalidCredential     Kind = "InvalidCredential"
	KindAccountBlocked        Kind = "AccountBlocked"
	KindInsufficientPrivilege Kind = "InsufficientPrivilege"
	KindForbiddenSelfTarget   Kind = "ForbiddenSelfTarget"
	KindAccountNotFound       Kind = "AccountNotFound"

	KindMissingField           Kind = "MissingField"
	KindInvalidField           Kind = "InvalidField"
	KindInsufficientContent    Kind = "InsufficientContent"
	KindSessionNotFound        Kind = "SessionNotFound"
	KindQuestionNotInSession   Kind = "QuestionNotInSession"
	KindQuestionNotFound       Kind = "QuestionNotFound"
	KindAnswerAlreadySubmitted Kind = "AnswerAlreadySubmitted"

	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindStorageUnavailable  Kind = "StorageUnavailable"
)

type Error struct {
	Code    Code   `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
	err     error
}

func New(code Code, opts ...Option) *Error {
	e := &Error{
		Code:    code,
		Message: codes.Code(code).String(),
	}

	for _, opt := range opts {
		opt.apply(e)
	}

	return e
}

func (e *Error) Error() string {
	s := fmt.Sprintf("code: %d, message: %s", e.Code, e.Message)
	if e.Kind != KindUnknown {
		s = fmt.Sprintf("code: %d, kind: %s, message: %s", e.Code, e.Kind, e.Message)
	}
	if e.err != nil {
		s += fmt.Sprintf(", err: %s", e.err)
	}

	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) GRPCStatus() *status.Status {
	return status.New(codes.Code(e.Code), e.Message)
}

func (e *Error) HTTPStatusCode() int {
	if c, ok := code2http[e.Code]; ok {
		return c
	}

	return http.StatusInternalServerError
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Kind == kind
}

func Convert(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return Internal(err)
	}

	return e
}

func Internal(err error) *Error {
	return New(CodeInternal, WithCause(err))
}

type Option interface {
	apply(*Error)
}

type optionFunc func(*Error)

func (f optionFunc) apply(e *Error) {
	f(e)
}

func WithCause(err error) Option {
	return optionFunc(func(e *Error) {
		e.err = err
	})
}

func WithMessagef(format string, args ...any) Option {
	return optionFunc(func(e *Error) {
		e.Message = fmt.Sprintf(format, args...)
	})
}

func WithKind(k Kind) Option {
	return optionFunc(func(e *Error) {
		e.Kind = k
	})
}
