package session

import (
	"time"

	"github.com/google/uuid"

	"coursetutor/internal/domain"
)

// Exchange is one question/answer pair within a session.
type Exchange struct {
	ID       string
	Question string
	Answer   domain.Answer
	AskedAt  time.Time
}

// Session holds the chat history of one conversation. Sessions are owned by
// the caller, so multiple independent sessions can exist side by side.
type Session struct {
	ID      string
	history []Exchange
}

// New creates an empty session.
func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Record appends a question/answer pair to the history.
func (s *Session) Record(question string, answer domain.Answer) Exchange {
	ex := Exchange{
		ID:       uuid.NewString(),
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	}
	s.history = append(s.history, ex)
	return ex
}

// History returns the recorded exchanges in order.
func (s *Session) History() []Exchange {
	out := make([]Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// Len reports the number of recorded exchanges.
func (s *Session) Len() int { return len(s.history) }
