package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/leaderboard"
	"github.com/victornm/trivia/internal/session"
)

type (
	CreateSessionRequest struct {
		PlayerID          string `json:"playerId"`
		PlayerDisplayName string `json:"playerDisplayName"`
		Category          string `json:"category"`
	}

	CreateSessionResponse struct {
		SessionID string     `json:"sessionId"`
		Questions []Question `json:"questions"`
	}

	Question struct {
		ID           string   `json:"id"`
		QuestionText string   `json:"questionText"`
		ImageRef     string   `json:"imageRef"`
		Options      []string `json:"options"`
	}

	SubmitAnswerRequest struct {
		QuestionID string   `json:"questionId"`
		Answer     *string  `json:"answer"`
		TimeSpent  *float64 `json:"timeSpent"`
	}

	SubmitAnswerResponse struct {
		IsCorrect         bool   `json:"isCorrect"`
		CorrectAnswer     string `json:"correctAnswer"`
		Score             int    `json:"score"`
		QuestionsAnswered int    `json:"questionsAnswered"`
	}

	SessionSummary struct {
		SessionID         string          `json:"sessionId"`
		PlayerID          string          `json:"playerId"`
		PlayerDisplayName string          `json:"playerDisplayName"`
		Category          string          `json:"category"`
		Questions         []HistoryRecord `json:"questions"`
		TotalQuestions    int             `json:"totalQuestions"`
		CorrectCount      int             `json:"correctCount"`
		IncorrectCount    int             `json:"incorrectCount"`
		Score             int             `json:"score"`
		CompletedAt       time.Time       `json:"completedAt"`
	}

	// HistoryRecord only carries the correct answer once the question is answered.
	HistoryRecord struct {
		QuestionID    string  `json:"questionId"`
		QuestionText  string  `json:"questionText"`
		CorrectAnswer string  `json:"correctAnswer,omitempty"`
		UserAnswer    *string `json:"userAnswer"`
		IsCorrect     bool    `json:"isCorrect"`
		TimeSpent     float64 `json:"timeSpent"`
		TimedOut      bool    `json:"timedOut"`
	}

	Stats struct {
		PlayerID string `json:"playerId"`
		Games    int64  `json:"games"`
		Answered int64  `json:"answered"`
		Correct  int64  `json:"correct"`
		TimedOut int64  `json:"timedOut"`
		Accuracy string `json:"accuracy"`
	}
)

func (a *API) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidField("body", errors.WithMessagef("invalid request body: %v", err)))
		return
	}

	ss, err := a.qss.CreateSession(c.Request.Context(), session.CreateSessionRequest{
		PlayerID:          req.PlayerID,
		PlayerDisplayName: req.PlayerDisplayName,
		Category:          req.Category,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := CreateSessionResponse{
		SessionID: ss.SessionID,
		Questions: make([]Question, 0, len(ss.Questions)),
	}

	for _, q := range ss.Questions {
		resp.Questions = append(resp.Questions, Question{
			ID:           q.QuestionID,
			QuestionText: q.QuestionText,
			ImageRef:     q.ImageRef,
			Options:      q.Options,
		})
	}

	c.JSON(http.StatusCreated, resp)
}

func (a *API) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidField("body", errors.WithMessagef("invalid request body: %v", err)))
		return
	}

	if req.QuestionID == "" {
		abortWithError(c, errors.MissingField("questionId"))
		return
	}
	if req.TimeSpent == nil {
		abortWithError(c, errors.MissingField("timeSpent"))
		return
	}

	sc, err := a.qss.SubmitAnswer(c.Request.Context(), session.SubmitAnswerRequest{
		SessionID:  c.Param("sessionId"),
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		TimeSpent:  *req.TimeSpent,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitAnswerResponse{
		IsCorrect:         sc.IsCorrect,
		CorrectAnswer:     sc.CorrectAnswer,
		Score:             sc.Score,
		QuestionsAnswered: sc.QuestionsAnswered,
	})
}

func (a *API) GetHistory(c *gin.Context) {
	sessions, err := a.qss.GetHistory(c.Request.Context(), session.GetHistoryRequest{
		PlayerID: c.Param("playerId"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := make([]SessionSummary, 0, len(sessions))
	for _, ss := range sessions {
		resp = append(resp, SessionSummary{
			SessionID:         ss.SessionID,
			PlayerID:          ss.PlayerID,
			PlayerDisplayName: ss.PlayerDisplayName,
			Category:          ss.Category,
			Questions:         toHistoryRecords(ss.Questions),
			TotalQuestions:    ss.TotalQuestions,
			CorrectCount:      ss.CorrectCount,
			IncorrectCount:    ss.IncorrectCount,
			Score:             ss.Score,
			CompletedAt:       ss.CompletedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func toHistoryRecords(records []domain.QuestionRecord) []HistoryRecord {
	out := make([]HistoryRecord, 0, len(records))
	for _, r := range records {
		h := HistoryRecord{
			QuestionID:   r.QuestionID,
			QuestionText: r.QuestionText,
			UserAnswer:   r.UserAnswer,
			IsCorrect:    r.IsCorrect,
			TimeSpent:    r.TimeSpent,
			TimedOut:     r.TimedOut,
		}
		if r.Answered() {
			h.CorrectAnswer = r.CorrectAnswer
		}
		out = append(out, h)
	}

	return out
}

func (a *API) GetStats(c *gin.Context) {
	st, err := a.ls.GetStats(c.Request.Context(), leaderboard.GetStatsRequest{
		PlayerID: c.Param("playerId"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, Stats{
		PlayerID: st.PlayerID,
		Games:    st.Games,
		Answered: st.Answered,
		Correct:  st.Correct,
		TimedOut: st.TimedOut,
		Accuracy: st.Accuracy.StringFixed(2),
	})
}

func (a *API) GetLeaderboard(c *gin.Context) {
	var limit int
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(c, errors.InvalidField("limit", errors.WithMessagef("limit must be a number: %s", v)))
			return
		}
		limit = n
	}

	l, err := a.ls.GetLeaderboard(c.Request.Context(), leaderboard.GetLeaderboardRequest{
		Category: c.Query("category"),
		Limit:    limit,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLeaderboard(*l))
}
