package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trivia"

const (
	AnswerCorrect   = "correct"
	AnswerIncorrect = "incorrect"
	AnswerTimedOut  = "timed_out"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Number of game sessions created.",
	})

	// AnswersTotal counts evaluated answers by result: correct, incorrect or timed_out.
	AnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Number of evaluated answers by result.",
	}, []string{"result"})

	AuthDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_denied_total",
		Help:      "Number of requests denied by the authorization pipeline, by error kind.",
	}, []string{"kind"})
)
