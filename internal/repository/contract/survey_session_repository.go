package contract

import (
	"context"

	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/repository/specification"
)

type SurveySessionRepository interface {
	Create(ctx context.Context, session *entity.SurveySession) error
	Update(ctx context.Context, session *entity.SurveySession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SurveySession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveySession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
