package dto

import "github.com/google/uuid"

// SessionCompletedMessage is the payload published on the internal bus when
// a survey session is finalized.
type SessionCompletedMessage struct {
	SessionId      uuid.UUID `json:"session_id"`
	Email          string    `json:"email"`
	Consent        bool      `json:"consent"`
	QuestionsCount int       `json:"questions_count"`
	Categories     []string  `json:"categories"`
	Emergency      bool      `json:"emergency"`
}
