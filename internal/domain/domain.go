package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CategoryAll matches every question regardless of its category.
	CategoryAll = "All"

	QuestionsPerSession = 5
	OptionsPerQuestion  = 4
	PointsPerCorrect    = 100

	// AnswerTimeLimit is the elapsed time, in seconds, at which an answer counts as timed out.
	AnswerTimeLimit = 20

	// NoAnswer is stored as the user answer when a submission carries no answer.
	NoAnswer = "No answer"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session represents one played game.
type Session struct {
	SessionID         string           `json:"sessionId"`
	PlayerID          string           `json:"playerId"`
	PlayerDisplayName string           `json:"playerDisplayName"`
	Category          string           `json:"category"`
	Questions         []QuestionRecord `json:"questions"`
	TotalQuestions    int              `json:"totalQuestions"`
	CorrectCount      int              `json:"correctCount"`
	IncorrectCount    int              `json:"incorrectCount"`
	Score             int              `json:"score"`
	// CompletedAt is set when the session is created and only orders the history.
	CompletedAt time.Time `json:"completedAt"`
}

// Answered returns the number of questions answered so far.
func (s *Session) Answered() int {
	return s.CorrectCount + s.IncorrectCount
}

// Finished reports whether every question of the session has been answered.
func (s *Session) Finished() bool {
	return s.Answered() >= s.TotalQuestions
}

// Record returns the question record with the given ID, or nil.
func (s *Session) Record(questionID string) *QuestionRecord {
	for i := range s.Questions {
		if s.Questions[i].QuestionID == questionID {
			return &s.Questions[i]
		}
	}

	return nil
}

// QuestionRecord is the state of one question within a session.
// QuestionText and CorrectAnswer are snapshots taken when the session was created.
type QuestionRecord struct {
	QuestionID    string  `json:"questionId"`
	QuestionText  string  `json:"questionText"`
	CorrectAnswer string  `json:"correctAnswer"`
	UserAnswer    *string `json:"userAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	TimeSpent     float64 `json:"timeSpent"`
	TimedOut      bool    `json:"timedOut"`
}

func (r *QuestionRecord) Answered() bool {
	return r.UserAnswer != nil
}

// Question is a record of the question bank.
type Question struct {
	QuestionID       string    `json:"id"`
	QuestionText     string    `json:"questionText"`
	CorrectAnswer    string    `json:"correctAnswer"`
	IncorrectAnswers []string  `json:"incorrectAnswers"`
	Category         string    `json:"category"`
	ImageRef         string    `json:"imageRef"`
	SourceRef        string    `json:"sourceRef"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Account is a user directory entry.
type Account struct {
	AccountID string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the verified caller of a request.
type Identity struct {
	SubjectID string
	Role      string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Leaderboard represents a list of players and their scores within a category.
// The list is sorted by score in descending order.
type Leaderboard struct {
	Category string
	Entries  []LeaderboardEntry
}

type LeaderboardEntry struct {
	PlayerID string
	Score    float64
}

// PlayerStats aggregates a player's answers over all sessions.
type PlayerStats struct {
	PlayerID string
	Games    int64
	Answered int64
	Correct  int64
	TimedOut int64
	Accuracy decimal.Decimal
}
