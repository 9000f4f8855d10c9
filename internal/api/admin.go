package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/victornm/trivia/internal/directory"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/question"
	"github.com/victornm/trivia/internal/score"
)

type (
	AddQuestionRequest struct {
		QuestionText     string   `json:"questionText"`
		CorrectAnswer    string   `json:"correctAnswer"`
		IncorrectAnswers []string `json:"incorrectAnswers"`
		Category         string   `json:"category"`
		ImageRef         string   `json:"imageRef"`
		SourceRef        string   `json:"sourceRef"`
	}

	SetBlockedRequest struct {
		IsBlocked *bool `json:"isBlocked"`
	}

	SetRoleRequest struct {
		Role string `json:"role"`
	}
)

func (a *API) ListAccounts(c *gin.Context) {
	accounts, err := a.as.ListAccounts(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

func (a *API) SetBlocked(c *gin.Context) {
	var req SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidField("body", errors.WithMessagef("invalid request body: %v", err)))
		return
	}

	if req.IsBlocked == nil {
		abortWithError(c, errors.MissingField("isBlocked"))
		return
	}

	account, err := a.as.SetBlocked(c.Request.Context(), directory.SetBlockedRequest{
		AccountID: target(c).AccountID,
		IsBlocked: *req.IsBlocked,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (a *API) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidField("body", errors.WithMessagef("invalid request body: %v", err)))
		return
	}

	account, err := a.as.SetRole(c.Request.Context(), directory.SetRoleRequest{
		AccountID: target(c).AccountID,
		Role:      req.Role,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (a *API) ListQuestions(c *gin.Context) {
	qs, err := a.qs.ListQuestions(c.Request.Context(), question.ListQuestionsRequest{
		Category: c.Query("category"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, qs)
}

func (a *API) AddQuestion(c *gin.Context) {
	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidField("body", errors.WithMessagef("invalid request body: %v", err)))
		return
	}

	q, err := a.qs.AddQuestion(c.Request.Context(), question.AddQuestionRequest{
		QuestionText:     req.QuestionText,
		CorrectAnswer:    req.CorrectAnswer,
		IncorrectAnswers: req.IncorrectAnswers,
		Category:         req.Category,
		ImageRef:         req.ImageRef,
		SourceRef:        req.SourceRef,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, q)
}

func (a *API) DeleteQuestion(c *gin.Context) {
	err := a.qs.DeleteQuestion(c.Request.Context(), question.DeleteQuestionRequest{
		QuestionID: c.Param("id"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) ListResults(c *gin.Context) {
	results, err := a.rs.ListResults(c.Request.Context(), score.ListResultsRequest{
		PlayerID: c.Param("playerId"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
