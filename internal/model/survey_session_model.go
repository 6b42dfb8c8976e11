package model

import (
	"time"

	"github.com/google/uuid"
)

type SurveySession struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email            string     `gorm:"type:text;not null;index"`
	ConsentRecontact bool       `gorm:"not null;default:false"`
	QuestionsCount   int        `gorm:"not null;default:0"`
	IsCompleted      bool       `gorm:"not null;default:false"`
	FinalFeedback    *string    `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
	CompletedAt      *time.Time `gorm:""`
}

func (SurveySession) TableName() string {
	return "qcm_sessions"
}
