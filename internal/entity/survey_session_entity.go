package entity

import (
	"time"

	"github.com/google/uuid"
)

type SurveySession struct {
	Id               uuid.UUID
	Email            string
	ConsentRecontact bool
	QuestionsCount   int
	IsCompleted      bool
	FinalFeedback    *string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	CompletedAt      *time.Time
}
