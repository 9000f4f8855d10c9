package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
)

const incorrectAnswersPerQuestion = domain.OptionsPerQuestion - 1

// DB is the part of *pgxpool.Pool the bank uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Config struct {
	DB   DB
	Intn Intn
}

// Service is the question bank.
type Service struct {
	db   DB
	intn Intn
}

func NewService(c Config) *Service {
	return &Service{
		db:   c.DB,
		intn: c.Intn,
	}
}

// CountMatching returns the number of questions in the category. The "All" category matches every question.
func (s *Service) CountMatching(ctx context.Context, category string) (int, error) {
	const stmt = `SELECT COUNT(*) FROM questions WHERE ($1 = '' OR category = $1);`

	var n int
	if err := s.db.QueryRow(ctx, stmt, categoryFilter(category)).Scan(&n); err != nil {
		return 0, errors.StorageUnavailable(fmt.Errorf("count questions: %w", err))
	}

	return n, nil
}

// DrawDistinct picks n distinct questions of the category at random, in draw order.
// Questions are not reserved; concurrent draws may return the same questions.
func (s *Service) DrawDistinct(ctx context.Context, category string, n int) ([]domain.Question, error) {
	const idsStmt = `SELECT question_id::text FROM questions WHERE ($1 = '' OR category = $1);`

	rows, err := s.db.Query(ctx, idsStmt, categoryFilter(category))
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("list question ids: %w", err))
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("collect question ids: %w", err))
	}

	picked := SampleDistinct(len(ids), n, s.intn)
	if picked == nil {
		return nil, errors.InsufficientContent(errors.WithMessagef("not enough questions available: category=%s", category))
	}

	drawn := make([]string, 0, n)
	for _, i := range picked {
		drawn = append(drawn, ids[i])
	}

	qs, err := s.getQuestions(ctx, drawn)
	if err != nil {
		return nil, err
	}

	// Questions deleted between the two reads leave the draw short.
	if len(qs) < n {
		return nil, errors.InsufficientContent(errors.WithMessagef("not enough questions available: category=%s", category))
	}

	return qs, nil
}

func (s *Service) getQuestions(ctx context.Context, ids []string) ([]domain.Question, error) {
	const stmt = `
SELECT question_id::text, question_text, correct_answer, incorrect_answers, category, image_ref, source_ref, create_time
FROM questions
WHERE question_id = ANY($1::uuid[]);`

	rows, err := s.db.Query(ctx, stmt, ids)
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("get questions: %w", err))
	}

	qs, err := pgx.CollectRows(rows, scanQuestion)
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("collect questions: %w", err))
	}

	byID := make(map[string]domain.Question, len(qs))
	for _, q := range qs {
		byID[q.QuestionID] = q
	}

	ordered := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}

	return ordered, nil
}

type ListQuestionsRequest struct {
	Category string
}

// ListQuestions returns the questions of a category, newest first.
func (s *Service) ListQuestions(ctx context.Context, req ListQuestionsRequest) ([]domain.Question, error) {
	const stmt = `
SELECT question_id::text, question_text, correct_answer, incorrect_answers, category, image_ref, source_ref, create_time
FROM questions
WHERE ($1 = '' OR category = $1)
ORDER BY create_time DESC;`

	rows, err := s.db.Query(ctx, stmt, categoryFilter(req.Category))
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("list questions: %w", err))
	}

	qs, err := pgx.CollectRows(rows, scanQuestion)
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("collect questions: %w", err))
	}

	return qs, nil
}

type AddQuestionRequest struct {
	QuestionText     string
	CorrectAnswer    string
	IncorrectAnswers []string
	Category         string
	ImageRef         string
	SourceRef        string
}

// AddQuestion validates and stores a new question.
func (s *Service) AddQuestion(ctx context.Context, req AddQuestionRequest) (*domain.Question, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("generate question ID: %w", err))
	}

	const stmt = `
INSERT INTO questions (question_id, question_text, correct_answer, incorrect_answers, category, image_ref, source_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING create_time;`

	q := &domain.Question{
		QuestionID:       id.String(),
		QuestionText:     req.QuestionText,
		CorrectAnswer:    req.CorrectAnswer,
		IncorrectAnswers: req.IncorrectAnswers,
		Category:         req.Category,
		ImageRef:         req.ImageRef,
		SourceRef:        req.SourceRef,
	}

	err = s.db.QueryRow(ctx, stmt, id, q.QuestionText, q.CorrectAnswer, q.IncorrectAnswers, q.Category, q.ImageRef, q.SourceRef).
		Scan(&q.CreatedAt)
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("insert question: %w", err))
	}

	return q, nil
}

type DeleteQuestionRequest struct {
	QuestionID string
}

// DeleteQuestion removes a question from the bank. Sessions keep their own snapshot of it.
func (s *Service) DeleteQuestion(ctx context.Context, req DeleteQuestionRequest) error {
	id, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return errors.QuestionNotFound(errors.WithMessagef("question not found: %s", req.QuestionID))
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM questions WHERE question_id = $1;`, id)
	if err != nil {
		return errors.StorageUnavailable(fmt.Errorf("delete question: %w", err))
	}

	if tag.RowsAffected() == 0 {
		return errors.QuestionNotFound(errors.WithMessagef("question not found: %s", req.QuestionID))
	}

	return nil
}

func scanQuestion(r pgx.CollectableRow) (domain.Question, error) {
	var q domain.Question
	err := r.Scan(&q.QuestionID, &q.QuestionText, &q.CorrectAnswer, &q.IncorrectAnswers, &q.Category, &q.ImageRef, &q.SourceRef, &q.CreatedAt)
	return q, err
}

func categoryFilter(category string) string {
	if category == domain.CategoryAll {
		return ""
	}

	return category
}

func validateQuestion(req AddQuestionRequest) error {
	required := []struct {
		name, value string
	}{
		{"questionText", req.QuestionText},
		{"correctAnswer", req.CorrectAnswer},
		{"category", req.Category},
		{"imageRef", req.ImageRef},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.MissingField(f.name)
		}
	}

	if req.Category == domain.CategoryAll {
		return errors.InvalidField("category", errors.WithMessagef("category %q is reserved", domain.CategoryAll))
	}

	if len(req.IncorrectAnswers) != incorrectAnswersPerQuestion {
		return errors.InvalidField("incorrectAnswers",
			errors.WithMessagef("exactly %d incorrect answers are required", incorrectAnswersPerQuestion))
	}

	seen := map[string]struct{}{req.CorrectAnswer: {}}
	for _, a := range req.IncorrectAnswers {
		if strings.TrimSpace(a) == "" {
			return errors.InvalidField("incorrectAnswers", errors.WithMessagef("incorrect answers must not be empty"))
		}
		if _, ok := seen[a]; ok {
			return errors.InvalidField("incorrectAnswers", errors.WithMessagef("answer options must be distinct"))
		}
		seen[a] = struct{}{}
	}

	return nil
}
