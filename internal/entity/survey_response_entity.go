package entity

import (
	"time"

	"github.com/google/uuid"
)

type SurveyResponse struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Question  string
	Answer    string
	Category  *string
	CreatedAt time.Time
}
