package question_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/question"
)

var (
	createTime      = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	questionColumns = []string{"question_id", "question_text", "correct_answer", "incorrect_answers", "category", "image_ref", "source_ref", "create_time"}
)

func TestService_CountMatching(t *testing.T) {
	tests := map[string]struct {
		category string
		filter   string
	}{
		"should count a single category":      {category: "Capitales", filter: "Capitales"},
		"should count every question for All": {category: domain.CategoryAll, filter: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			db := makeDB(t)
			s := question.NewService(question.Config{DB: db})

			db.ExpectQuery("SELECT COUNT\\(\\*\\) FROM questions").
				WithArgs(tt.filter).
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

			n, err := s.CountMatching(context.Background(), tt.category)
			require.NoError(t, err)
			require.Equal(t, 7, n)
		})
	}
}

func TestService_DrawDistinct(t *testing.T) {
	ids := []string{
		"0190a6c4-0000-7000-8000-00000000a001",
		"0190a6c4-0000-7000-8000-00000000a002",
		"0190a6c4-0000-7000-8000-00000000a003",
	}

	// last always swaps in the last remaining index: [0 1 2] draws 2 then 0.
	last := func(n int) int { return n - 1 }

	expectIDs := func(db pgxmock.PgxPoolIface, filter string, ids ...string) {
		rows := pgxmock.NewRows([]string{"question_id"})
		for _, id := range ids {
			rows.AddRow(id)
		}
		db.ExpectQuery("SELECT question_id::text FROM questions").
			WithArgs(filter).
			WillReturnRows(rows)
	}

	t.Run("should return the drawn questions in draw order", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db, Intn: last})

		expectIDs(db, "Capitales", ids...)
		db.ExpectQuery("WHERE question_id = ANY\\(\\$1::uuid\\[\\]\\)").
			WithArgs([]string{ids[2], ids[0]}).
			WillReturnRows(pgxmock.NewRows(questionColumns).
				AddRow(ids[0], "Capital de Francia", "París", []string{"Roma", "Madrid", "Lisboa"}, "Capitales", "img/fr.png", "", createTime).
				AddRow(ids[2], "Capital de Perú", "Lima", []string{"Quito", "Bogotá", "Caracas"}, "Capitales", "img/pe.png", "", createTime))

		qs, err := s.DrawDistinct(context.Background(), "Capitales", 2)
		require.NoError(t, err)
		require.Len(t, qs, 2)
		require.Equal(t, ids[2], qs[0].QuestionID)
		require.Equal(t, ids[0], qs[1].QuestionID)
		require.Equal(t, []string{"Quito", "Bogotá", "Caracas"}, qs[0].IncorrectAnswers)
	})

	t.Run("should draw from every category for All", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db, Intn: func(int) int { return 0 }})

		expectIDs(db, "", ids[0])
		db.ExpectQuery("WHERE question_id = ANY").
			WithArgs([]string{ids[0]}).
			WillReturnRows(pgxmock.NewRows(questionColumns).
				AddRow(ids[0], "Bandera de Japón", "Círculo rojo", []string{"Estrella", "Cruz", "Franjas"}, "Banderas", "img/jp.png", "", createTime))

		qs, err := s.DrawDistinct(context.Background(), domain.CategoryAll, 1)
		require.NoError(t, err)
		require.Len(t, qs, 1)
	})

	t.Run("should reject a draw larger than the category", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db, Intn: last})

		expectIDs(db, "Capitales", ids...)

		_, err := s.DrawDistinct(context.Background(), "Capitales", 4)
		require.True(t, errors.Is(err, errors.KindInsufficientContent), "got %v", err)
	})

	t.Run("should reject a draw left short by a concurrent delete", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db, Intn: last})

		expectIDs(db, "Capitales", ids...)
		db.ExpectQuery("WHERE question_id = ANY").
			WithArgs([]string{ids[2], ids[0]}).
			WillReturnRows(pgxmock.NewRows(questionColumns).
				AddRow(ids[0], "Capital de Francia", "París", []string{"Roma", "Madrid", "Lisboa"}, "Capitales", "img/fr.png", "", createTime))

		_, err := s.DrawDistinct(context.Background(), "Capitales", 2)
		require.True(t, errors.Is(err, errors.KindInsufficientContent), "got %v", err)
	})

	t.Run("should report an unavailable bank", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db, Intn: last})

		db.ExpectQuery("SELECT question_id::text FROM questions").
			WithArgs("Capitales").
			WillReturnError(stderrors.New("connection reset"))

		_, err := s.DrawDistinct(context.Background(), "Capitales", 2)
		require.True(t, errors.Is(err, errors.KindStorageUnavailable), "got %v", err)
	})
}

func TestService_AddQuestion(t *testing.T) {
	valid := question.AddQuestionRequest{
		QuestionText:     "Capital de Italia",
		CorrectAnswer:    "Roma",
		IncorrectAnswers: []string{"Milán", "Nápoles", "Turín"},
		Category:         "Capitales",
		ImageRef:         "img/it.png",
	}

	t.Run("should store the question", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db})

		db.ExpectQuery("INSERT INTO questions").
			WithArgs(pgxmock.AnyArg(), valid.QuestionText, valid.CorrectAnswer, valid.IncorrectAnswers, valid.Category, valid.ImageRef, valid.SourceRef).
			WillReturnRows(pgxmock.NewRows([]string{"create_time"}).AddRow(createTime))

		q, err := s.AddQuestion(context.Background(), valid)
		require.NoError(t, err)
		require.NotEmpty(t, q.QuestionID)
		require.Equal(t, createTime, q.CreatedAt)
		require.Equal(t, valid.IncorrectAnswers, q.IncorrectAnswers)
	})

	tests := map[string]struct {
		malform func(r *question.AddQuestionRequest)
		kind    errors.Kind
	}{
		"should require the question text": {
			malform: func(r *question.AddQuestionRequest) { r.QuestionText = "" },
			kind:    errors.KindMissingField,
		},
		"should reject the All category": {
			malform: func(r *question.AddQuestionRequest) { r.Category = domain.CategoryAll },
			kind:    errors.KindInvalidField,
		},
		"should require three incorrect answers": {
			malform: func(r *question.AddQuestionRequest) { r.IncorrectAnswers = []string{"Milán", "Nápoles"} },
			kind:    errors.KindInvalidField,
		},
		"should require distinct options": {
			malform: func(r *question.AddQuestionRequest) { r.IncorrectAnswers = []string{"Milán", "Roma", "Turín"} },
			kind:    errors.KindInvalidField,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			db := makeDB(t)
			s := question.NewService(question.Config{DB: db})

			req := valid
			req.IncorrectAnswers = append([]string(nil), valid.IncorrectAnswers...)
			tt.malform(&req)

			_, err := s.AddQuestion(context.Background(), req)
			require.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestService_DeleteQuestion(t *testing.T) {
	const id = "0190a6c4-0000-7000-8000-00000000a001"

	t.Run("should delete the question", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db})

		db.ExpectExec("DELETE FROM questions").
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, s.DeleteQuestion(context.Background(), question.DeleteQuestionRequest{QuestionID: id}))
	})

	t.Run("should report an unknown question", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db})

		db.ExpectExec("DELETE FROM questions").
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := s.DeleteQuestion(context.Background(), question.DeleteQuestionRequest{QuestionID: id})
		require.True(t, errors.Is(err, errors.KindQuestionNotFound), "got %v", err)
	})

	t.Run("should report a malformed id as unknown without querying", func(t *testing.T) {
		db := makeDB(t)
		s := question.NewService(question.Config{DB: db})

		err := s.DeleteQuestion(context.Background(), question.DeleteQuestionRequest{QuestionID: "q1"})
		require.True(t, errors.Is(err, errors.KindQuestionNotFound), "got %v", err)
	})
}

func makeDB(t *testing.T) pgxmock.PgxPoolIface {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.ExpectationsWereMet())
		db.Close()
	})

	return db
}
