package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/event"
	"github.com/victornm/trivia/internal/question"
	"github.com/victornm/trivia/internal/telemetry"
)

const historyLimit = 10

// QuestionBank is the source of the questions drawn into a session.
type QuestionBank interface {
	CountMatching(ctx context.Context, category string) (int, error)
	DrawDistinct(ctx context.Context, category string, n int) ([]domain.Question, error)
}

type Store interface {
	Create(ctx context.Context, ss *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, id string, fn func(ss *domain.Session) error) (*domain.Session, error)
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.Session, error)
}

type Config struct {
	Bank     QuestionBank
	Store    Store
	EventBus *event.Bus
	Now      func() time.Time
	Intn     question.Intn
}

type Service struct {
	bank  QuestionBank
	store Store
	eb    *event.Bus
	now   func() time.Time
	intn  question.Intn
}

func NewService(c Config) *Service {
	s := &Service{
		bank:  c.Bank,
		store: c.Store,
		eb:    c.EventBus,
		now:   c.Now,
		intn:  c.Intn,
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// CreateSessionRequest represents a request to start a new game.
type CreateSessionRequest struct {
	PlayerID          string
	PlayerDisplayName string
	// Category filters the drawn questions, "All" when empty.
	Category string
}

type CreateSessionResponse struct {
	SessionID string
	Questions []PlayerQuestion
}

// PlayerQuestion is the player-facing view of a question: the correct option is not marked.
type PlayerQuestion struct {
	QuestionID   string
	QuestionText string
	ImageRef     string
	Options      []string
}

// CreateSession draws the questions of a new game and stores the session.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error) {
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, errors.MissingField("playerId")
	}
	if strings.TrimSpace(req.PlayerDisplayName) == "" {
		return nil, errors.MissingField("playerDisplayName")
	}

	category := req.Category
	if category == "" {
		category = domain.CategoryAll
	}

	n, err := s.bank.CountMatching(ctx, category)
	if err != nil {
		return nil, storageError(err)
	}
	if n < domain.QuestionsPerSession {
		return nil, errors.InsufficientContent(errors.WithMessagef(
			"not enough questions available: category=%s, available=%d", category, n))
	}

	qs, err := s.bank.DrawDistinct(ctx, category, domain.QuestionsPerSession)
	if err != nil {
		return nil, storageError(err)
	}
	if err := checkDraw(qs); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("generate session ID: %w", err))
	}

	ss := &domain.Session{
		SessionID:         id.String(),
		PlayerID:          req.PlayerID,
		PlayerDisplayName: req.PlayerDisplayName,
		Category:          category,
		Questions:         make([]domain.QuestionRecord, 0, len(qs)),
		TotalQuestions:    domain.QuestionsPerSession,
		CompletedAt:       s.now(),
	}

	resp := &CreateSessionResponse{
		SessionID: ss.SessionID,
		Questions: make([]PlayerQuestion, 0, len(qs)),
	}

	for _, q := range qs {
		ss.Questions = append(ss.Questions, domain.QuestionRecord{
			QuestionID:    q.QuestionID,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
		})

		options := append([]string{q.CorrectAnswer}, q.IncorrectAnswers...)
		resp.Questions = append(resp.Questions, PlayerQuestion{
			QuestionID:   q.QuestionID,
			QuestionText: q.QuestionText,
			ImageRef:     q.ImageRef,
			Options:      question.Shuffle(options, s.intn),
		})
	}

	if err := s.store.Create(ctx, ss); err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	telemetry.SessionsCreated.Inc()
	s.eb.Publish(ctx, domain.EventSessionCreated{
		Session: *ss,
	})

	return resp, nil
}

// checkDraw guards the session invariants against a misbehaving bank.
func checkDraw(qs []domain.Question) error {
	if len(qs) != domain.QuestionsPerSession {
		return errors.InsufficientContent()
	}

	seen := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		if _, ok := seen[q.QuestionID]; ok {
			return errors.Internal(fmt.Errorf("question bank drew %s twice", q.QuestionID))
		}
		seen[q.QuestionID] = struct{}{}

		if err := checkOptions(q); err != nil {
			return err
		}
	}

	return nil
}

// checkOptions requires 4 distinct non-empty options: the correct answer and 3 incorrect ones.
func checkOptions(q domain.Question) error {
	if len(q.IncorrectAnswers) != domain.OptionsPerQuestion-1 {
		return errors.Internal(fmt.Errorf("question %s has %d incorrect answers", q.QuestionID, len(q.IncorrectAnswers)))
	}

	options := make(map[string]struct{}, domain.OptionsPerQuestion)
	for _, o := range append([]string{q.CorrectAnswer}, q.IncorrectAnswers...) {
		if o == "" {
			return errors.Internal(fmt.Errorf("question %s has an empty option", q.QuestionID))
		}
		options[o] = struct{}{}
	}
	if len(options) != domain.OptionsPerQuestion {
		return errors.Internal(fmt.Errorf("question %s has duplicate options", q.QuestionID))
	}

	return nil
}

type SubmitAnswerRequest struct {
	SessionID  string
	QuestionID string
	// Answer is nil when the player gave no answer.
	Answer *string
	// TimeSpent is the elapsed time in seconds reported by the client.
	TimeSpent float64
}

type SubmitAnswerResponse struct {
	IsCorrect         bool
	CorrectAnswer     string
	Score             int
	QuestionsAnswered int
}

// SubmitAnswer evaluates the answer to one question of a session and updates its score.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if req.TimeSpent < 0 {
		return nil, errors.InvalidField("timeSpent", errors.WithMessagef("timeSpent must not be negative"))
	}

	var rec domain.QuestionRecord
	ss, err := s.store.Update(ctx, req.SessionID, func(ss *domain.Session) error {
		r := ss.Record(req.QuestionID)
		if r == nil {
			return errors.QuestionNotInSession(errors.WithMessagef(
				"question not found in this session: session=%s question=%s", req.SessionID, req.QuestionID))
		}
		if r.Answered() {
			return errors.AnswerAlreadySubmitted(errors.WithMessagef(
				"answer is already submitted: session=%s question=%s", req.SessionID, req.QuestionID))
		}

		evaluate(r, req.Answer, req.TimeSpent)
		if r.IsCorrect {
			ss.CorrectCount++
			ss.Score += domain.PointsPerCorrect
		} else {
			ss.IncorrectCount++
		}

		rec = *r
		return nil
	})
	switch {
	case stderrors.Is(err, errSessionNotFound):
		return nil, errors.SessionNotFound(errors.WithMessagef("session not found: %s", req.SessionID))
	case err != nil:
		return nil, storageError(err)
	}

	telemetry.AnswersTotal.WithLabelValues(answerResult(rec)).Inc()

	s.eb.Publish(ctx, domain.EventAnswerSubmitted{
		SessionID: ss.SessionID,
		PlayerID:  ss.PlayerID,
		Category:  ss.Category,
		Record:    rec,
		Score:     ss.Score,
	})
	if ss.Finished() {
		s.eb.Publish(ctx, domain.EventSessionFinished{
			Session: *ss,
		})
	}

	return &SubmitAnswerResponse{
		IsCorrect:         rec.IsCorrect,
		CorrectAnswer:     rec.CorrectAnswer,
		Score:             ss.Score,
		QuestionsAnswered: ss.Answered(),
	}, nil
}

// evaluate records the answer on r. An absent or empty answer, or one given at or
// after the time limit, is timed out and never correct. Otherwise the answer must
// equal the correct answer exactly.
func evaluate(r *domain.QuestionRecord, answer *string, timeSpent float64) {
	noAnswer := answer == nil || *answer == ""

	r.TimedOut = noAnswer || timeSpent >= domain.AnswerTimeLimit
	r.IsCorrect = !r.TimedOut && *answer == r.CorrectAnswer
	r.TimeSpent = timeSpent

	stored := domain.NoAnswer
	if !noAnswer {
		stored = *answer
	}
	r.UserAnswer = &stored
}

func answerResult(r domain.QuestionRecord) string {
	switch {
	case r.IsCorrect:
		return telemetry.AnswerCorrect
	case r.TimedOut:
		return telemetry.AnswerTimedOut
	default:
		return telemetry.AnswerIncorrect
	}
}

type GetHistoryRequest struct {
	PlayerID string
}

// GetHistory returns the player's 10 most recent sessions, newest first.
func (s *Service) GetHistory(ctx context.Context, req GetHistoryRequest) ([]domain.Session, error) {
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, errors.MissingField("playerId")
	}

	sessions, err := s.store.ListByPlayer(ctx, req.PlayerID, historyLimit)
	if err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	return sessions, nil
}

// storageError keeps typed errors from a collaborator and reports anything else as a storage failure.
func storageError(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}

	return errors.StorageUnavailable(err)
}
