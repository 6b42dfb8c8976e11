package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSessionRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Consent bool   `json:"consent"`
}

// BotMessage is one message the chat surface should render.
type BotMessage struct {
	Message            string    `json:"message"`
	Category           string    `json:"category,omitempty"`
	SuggestedQuestions []string  `json:"suggested_questions,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

type StartSessionResponse struct {
	SessionId     uuid.UUID   `json:"session_id"`
	Resumed       bool        `json:"resumed"`
	QuestionCount int         `json:"question_count"`
	MaxQuestions  int         `json:"max_questions"`
	Welcome       *BotMessage `json:"welcome"`
	Question      *BotMessage `json:"question,omitempty"`
}

type AnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=500"`
}

type AnswerResponse struct {
	QuestionCount int          `json:"question_count"`
	MaxQuestions  int          `json:"max_questions"`
	IsFollowUp    bool         `json:"is_follow_up"`
	Completed     bool         `json:"completed"`
	InputDisabled bool         `json:"input_disabled"`
	Question      *BotMessage  `json:"question,omitempty"`
	Messages      []BotMessage `json:"messages,omitempty"`
}

type SessionStatusResponse struct {
	SessionId     uuid.UUID `json:"session_id"`
	Email         string    `json:"email"`
	QuestionCount int       `json:"question_count"`
	MaxQuestions  int       `json:"max_questions"`
	IsCompleted   bool      `json:"is_completed"`
	IsActive      bool      `json:"is_active"`
	Message       string    `json:"message,omitempty"`
}

type CompleteSessionRequest struct {
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}

type StopSessionRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=2000"`
}

type SessionSummary struct {
	TotalExchanges      int      `json:"total_exchanges"`
	CategoriesCovered   []string `json:"categories_covered"`
	DurationMinutes     int      `json:"duration_minutes"`
	AverageAnswerLength int      `json:"average_answer_length"`
}

type CompleteSessionResponse struct {
	Thanks  *BotMessage     `json:"thanks"`
	Summary *SessionSummary `json:"summary"`
}
