package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/victornm/trivia/internal/errors"
)

func TestError_HTTPStatusCode(t *testing.T) {
	tests := map[string]struct {
		err  *errors.Error
		want int
	}{
		"missing field is a bad request":             {errors.MissingField("playerId"), http.StatusBadRequest},
		"invalid field is a bad request":             {errors.InvalidField("timeSpent"), http.StatusBadRequest},
		"unauthenticated is 401":                     {errors.Unauthenticated(), http.StatusUnauthorized},
		"invalid credential is 401":                  {errors.InvalidCredential(), http.StatusUnauthorized},
		"blocked account is 403":                     {errors.AccountBlocked(), http.StatusForbidden},
		"insufficient privilege is 403":              {errors.InsufficientPrivilege(), http.StatusForbidden},
		"self target is 403":                         {errors.ForbiddenSelfTarget(), http.StatusForbidden},
		"insufficient content is 404":                {errors.InsufficientContent(), http.StatusNotFound},
		"session not found is 404":                   {errors.SessionNotFound(), http.StatusNotFound},
		"question not in session is 404":             {errors.QuestionNotInSession(), http.StatusNotFound},
		"already answered is 409":                    {errors.AnswerAlreadySubmitted(), http.StatusConflict},
		"upstream unavailable is 500":                {errors.UpstreamUnavailable(fmt.Errorf("dial")), http.StatusInternalServerError},
		"storage unavailable is 500":                 {errors.StorageUnavailable(fmt.Errorf("dial")), http.StatusInternalServerError},
		"unknown code falls back to internal server": {errors.New(errors.Code(codes.DataLoss)), http.StatusInternalServerError},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatusCode())
		})
	}
}

func TestConvert(t *testing.T) {
	cause := stderrors.New("connection refused")

	t.Run("plain error becomes internal", func(t *testing.T) {
		e := errors.Convert(cause)
		require.Equal(t, errors.CodeInternal, e.Code)
		require.ErrorIs(t, e, cause)
	})

	t.Run("wrapped typed error keeps its kind", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", errors.SessionNotFound())
		e := errors.Convert(err)
		require.Equal(t, errors.KindSessionNotFound, e.Kind)
		require.True(t, errors.Is(err, errors.KindSessionNotFound))
		require.False(t, errors.Is(err, errors.KindQuestionNotInSession))
	})

	t.Run("storage error keeps its cause", func(t *testing.T) {
		e := errors.StorageUnavailable(cause)
		require.ErrorIs(t, e, cause)
		require.Contains(t, e.Error(), "StorageUnavailable")
	})
}

func TestError_GRPCStatus(t *testing.T) {
	err := errors.AccountBlocked(errors.WithMessagef("account %s is blocked", "u1"))

	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.PermissionDenied, s.Code())
	assert.Equal(t, "account u1 is blocked", s.Message())
}
