package implementation

import (
	"context"

	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/mapper"
	"ai-survey-be/internal/model"
	"ai-survey-be/internal/repository/contract"
	"ai-survey-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SurveyResponseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SurveyMapper
}

func NewSurveyResponseRepository(db *gorm.DB) contract.SurveyResponseRepository {
	return &SurveyResponseRepositoryImpl{
		db:     db,
		mapper: mapper.NewSurveyMapper(),
	}
}

func (r *SurveyResponseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SurveyResponseRepositoryImpl) Create(ctx context.Context, response *entity.SurveyResponse) error {
	m := r.mapper.ResponseToModel(response)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return contract.NewBackendError("create response", err)
	}
	*response = *r.mapper.ResponseToEntity(m)
	return nil
}

func (r *SurveyResponseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveyResponse, error) {
	var models []*model.SurveyResponse
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, contract.NewBackendError("list responses", err)
	}
	return r.mapper.ResponsesToEntities(models), nil
}

func (r *SurveyResponseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SurveyResponse{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, contract.NewBackendError("count responses", err)
	}
	return count, nil
}
