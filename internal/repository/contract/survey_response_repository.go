package contract

import (
	"context"

	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/repository/specification"
)

// SurveyResponseRepository is append-only: responses are never updated or
// deleted once written.
type SurveyResponseRepository interface {
	Create(ctx context.Context, response *entity.SurveyResponse) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveyResponse, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
