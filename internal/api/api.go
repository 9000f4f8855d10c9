package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/victornm/trivia/internal/auth"
	"github.com/victornm/trivia/internal/directory"
	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/event"
	"github.com/victornm/trivia/internal/leaderboard"
	"github.com/victornm/trivia/internal/question"
	"github.com/victornm/trivia/internal/score"
	"github.com/victornm/trivia/internal/session"
)

type Config struct {
	Engine       *gin.Engine
	EventBus     *event.Bus
	Auth         *auth.Pipeline
	Session      *session.Service
	Leaderboard  *leaderboard.Service
	Questions    Questions
	Accounts     Accounts
	Results      Results
	Redis        Redis
	PubsubPrefix string
}

// Questions is the admin view of the question bank.
type Questions interface {
	ListQuestions(ctx context.Context, req question.ListQuestionsRequest) ([]domain.Question, error)
	AddQuestion(ctx context.Context, req question.AddQuestionRequest) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, req question.DeleteQuestionRequest) error
}

// Accounts is the admin view of the user directory.
type Accounts interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	SetBlocked(ctx context.Context, req directory.SetBlockedRequest) (*domain.Account, error)
	SetRole(ctx context.Context, req directory.SetRoleRequest) (*domain.Account, error)
}

type Results interface {
	ListResults(ctx context.Context, req score.ListResultsRequest) ([]score.Result, error)
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	auth *auth.Pipeline
	qss  *session.Service
	ls   *leaderboard.Service
	qs   Questions
	as   Accounts
	rs   Results

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		auth:   c.Auth,
		qss:    c.Session,
		ls:     c.Leaderboard,
		qs:     c.Questions,
		as:     c.Accounts,
		rs:     c.Results,
		redis:  c.Redis,
		prefix: c.PubsubPrefix,
	}

	a.register(c.Engine)

	// Register event handlers
	c.EventBus.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
		return a.PublishLeaderboardUpdated(ctx, e.(domain.EventLeaderboardUpdated))
	})

	return a
}

func (a *API) register(e *gin.Engine) {
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Player routes: token validator and block gate.
	player := e.Group("/", a.authenticate)
	player.POST("/game/start", a.CreateSession)
	player.POST("/game/:sessionId/answer", a.SubmitAnswer)
	player.GET("/game/history/:playerId", a.GetHistory)
	player.GET("/game/stats/:playerId", a.GetStats)
	player.GET("/leaderboard", a.GetLeaderboard)

	// Admin routes add the role guard, and the self-target guard on account mutations.
	admin := e.Group("/admin", a.authenticate, a.requireAdmin)
	admin.GET("/users", a.ListAccounts)
	admin.PUT("/users/:userId/block", a.guardSelfTarget("userId"), a.SetBlocked)
	admin.PUT("/users/:userId/role", a.guardSelfTarget("userId"), a.SetRole)
	admin.GET("/questions", a.ListQuestions)
	admin.POST("/questions", a.AddQuestion)
	admin.DELETE("/questions/:id", a.DeleteQuestion)
	admin.GET("/results/:playerId", a.ListResults)
}
