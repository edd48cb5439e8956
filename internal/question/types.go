package question

import (
	"time"

	"github.com/Yo1k/qaws/internal/question/external"
)

// Question is a persisted trivia record. The id is assigned by the upstream
// source and serves as the primary key; created_at is assigned by the store
// on first insertion and never changes afterwards.
type Question struct {
	ID        int64
	Text      string
	Answer    string
	CreatedAt time.Time
}

// fromCandidate normalizes a raw source record. Records missing the id, the
// question text or the answer are rejected here so they never reach the
// store.
func fromCandidate(raw external.RawQuestion) (Question, bool) {
	if raw.ID <= 0 || raw.Question == "" || raw.Answer == "" {
		return Question{}, false
	}
	return Question{ID: raw.ID, Text: raw.Question, Answer: raw.Answer}, true
}
