package implementation

import (
	"context"
	"errors"

	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/mapper"
	"ai-survey-be/internal/model"
	"ai-survey-be/internal/repository/contract"
	"ai-survey-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SurveySessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SurveyMapper
}

func NewSurveySessionRepository(db *gorm.DB) contract.SurveySessionRepository {
	return &SurveySessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSurveyMapper(),
	}
}

func (r *SurveySessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SurveySessionRepositoryImpl) Create(ctx context.Context, session *entity.SurveySession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return contract.NewBackendError("create session", err)
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SurveySessionRepositoryImpl) Update(ctx context.Context, session *entity.SurveySession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return contract.NewBackendError("update session", err)
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SurveySessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SurveySession, error) {
	var m model.SurveySession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, contract.NewBackendError("find session", err)
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SurveySessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveySession, error) {
	var models []*model.SurveySession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, contract.NewBackendError("list sessions", err)
	}
	entities := make([]*entity.SurveySession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *SurveySessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SurveySession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, contract.NewBackendError("count sessions", err)
	}
	return count, nil
}
