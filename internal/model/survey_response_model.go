package model

import (
	"time"

	"github.com/google/uuid"
)

// SurveyResponse rows are append-only, never updated or deleted.
type SurveyResponse struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	Category  *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SurveyResponse) TableName() string {
	return "qcm_responses"
}
