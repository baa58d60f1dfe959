package domain

import "time"

// Exchange is one question/answer round-trip persisted to the
// conversation log, with the document ids the answer was grounded in.
type Exchange struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Sources        []string  `json:"sources"`
	CreatedAt      time.Time `json:"created_at"`
}
