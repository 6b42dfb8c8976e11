package mapper

import (
	"time"

	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/model"
)

type SurveyMapper struct{}

func NewSurveyMapper() *SurveyMapper {
	return &SurveyMapper{}
}

// Session Mappers

func (m *SurveyMapper) SessionToEntity(s *model.SurveySession) *entity.SurveySession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.SurveySession{
		Id:               s.Id,
		Email:            s.Email,
		ConsentRecontact: s.ConsentRecontact,
		QuestionsCount:   s.QuestionsCount,
		IsCompleted:      s.IsCompleted,
		FinalFeedback:    s.FinalFeedback,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
		CompletedAt:      s.CompletedAt,
	}
}

func (m *SurveyMapper) SessionToModel(s *entity.SurveySession) *model.SurveySession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.SurveySession{
		Id:               s.Id,
		Email:            s.Email,
		ConsentRecontact: s.ConsentRecontact,
		QuestionsCount:   s.QuestionsCount,
		IsCompleted:      s.IsCompleted,
		FinalFeedback:    s.FinalFeedback,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
		CompletedAt:      s.CompletedAt,
	}
}

// Response Mappers

func (m *SurveyMapper) ResponseToEntity(r *model.SurveyResponse) *entity.SurveyResponse {
	if r == nil {
		return nil
	}
	return &entity.SurveyResponse{
		Id:        r.Id,
		SessionId: r.SessionId,
		Question:  r.Question,
		Answer:    r.Answer,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
	}
}

func (m *SurveyMapper) ResponseToModel(r *entity.SurveyResponse) *model.SurveyResponse {
	if r == nil {
		return nil
	}
	return &model.SurveyResponse{
		Id:        r.Id,
		SessionId: r.SessionId,
		Question:  r.Question,
		Answer:    r.Answer,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
	}
}

func (m *SurveyMapper) ResponsesToEntities(models []*model.SurveyResponse) []*entity.SurveyResponse {
	entities := make([]*entity.SurveyResponse, len(models))
	for i, r := range models {
		entities[i] = m.ResponseToEntity(r)
	}
	return entities
}
