package domain

const (
	EventNameSessionCreated     = "session.created"
	EventNameAnswerSubmitted    = "answer.submitted"
	EventNameSessionFinished    = "session.finished"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

type EventSessionCreated struct {
	Session Session
}

func (EventSessionCreated) Name() string { return EventNameSessionCreated }

// EventAnswerSubmitted carries the evaluated record and the session totals after the submission.
type EventAnswerSubmitted struct {
	SessionID string
	PlayerID  string
	Category  string
	Record    QuestionRecord
	Score     int
}

func (EventAnswerSubmitted) Name() string { return EventNameAnswerSubmitted }

type EventSessionFinished struct {
	Session Session
}

func (EventSessionFinished) Name() string { return EventNameSessionFinished }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
