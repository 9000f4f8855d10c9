package errors

func Unauthenticated(opts ...Option) *Error {
	return newKind(CodeUnauthenticated, KindUnauthenticated, "credential required", opts)
}

func InvalidCredential(opts ...Option) *Error {
	return newKind(CodeUnauthenticated, KindInvalidCredential, "invalid or expired credential", opts)
}

func AccountBlocked(opts ...Option) *Error {
	return newKind(CodePermissionDenied, KindAccountBlocked, "account is blocked", opts)
}

func InsufficientPrivilege(opts ...Option) *Error {
	return newKind(CodePermissionDenied, KindInsufficientPrivilege, "admin access required", opts)
}

func ForbiddenSelfTarget(opts ...Option) *Error {
	return newKind(CodePermissionDenied, KindForbiddenSelfTarget, "cannot apply this change to your own account", opts)
}

func AccountNotFound(opts ...Option) *Error {
	return newKind(CodeNotFound, KindAccountNotFound, "account not found", opts)
}

func MissingField(field string, opts ...Option) *Error {
	return newKind(CodeInvalidArgument, KindMissingField, "missing required field: "+field, opts)
}

func InvalidField(field string, opts ...Option) *Error {
	return newKind(CodeInvalidArgument, KindInvalidField, "invalid field: "+field, opts)
}

func InsufficientContent(opts ...Option) *Error {
	return newKind(CodeNotFound, KindInsufficientContent, "not enough questions available", opts)
}

func SessionNotFound(opts ...Option) *Error {
	return newKind(CodeNotFound, KindSessionNotFound, "session not found", opts)
}

func QuestionNotInSession(opts ...Option) *Error {
	return newKind(CodeNotFound, KindQuestionNotInSession, "question not found in this session", opts)
}

func QuestionNotFound(opts ...Option) *Error {
	return newKind(CodeNotFound, KindQuestionNotFound, "question not found", opts)
}

func AnswerAlreadySubmitted(opts ...Option) *Error {
	return newKind(CodeAlreadyExists, KindAnswerAlreadySubmitted, "question already answered", opts)
}

// UpstreamUnavailable wraps a failed call to a remote collaborator such as the user directory.
func UpstreamUnavailable(err error, opts ...Option) *Error {
	return newKind(CodeUnavailable, KindUpstreamUnavailable, "upstream unavailable", append([]Option{WithCause(err)}, opts...))
}

// StorageUnavailable wraps a failed read or write against a backing store.
func StorageUnavailable(err error, opts ...Option) *Error {
	return newKind(CodeUnavailable, KindStorageUnavailable, "storage unavailable", append([]Option{WithCause(err)}, opts...))
}

func newKind(code Code, kind Kind, msg string, opts []Option) *Error {
	e := &Error{
		Code:    code,
		Kind:    kind,
		Message: msg,
	}

	for _, opt := range opts {
		opt.apply(e)
	}

	return e
}
