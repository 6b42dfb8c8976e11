package unitofwork

import (
	"context"

	"ai-survey-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SurveySessionRepository() contract.SurveySessionRepository
	SurveyResponseRepository() contract.SurveyResponseRepository
}
