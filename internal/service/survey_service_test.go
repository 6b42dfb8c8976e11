package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/dto"
	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/repository/contract"
	"ai-survey-be/internal/repository/memory"
	"ai-survey-be/internal/repository/specification"
	"ai-survey-be/internal/repository/unitofwork"
	"ai-survey-be/internal/service/apperror"
	"ai-survey-be/pkg/proxyclient"
	"ai-survey-be/pkg/survey"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stand-ins for the GORM repositories. Specs are interpreted by
// type so the service sees the same query semantics.

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.SurveySession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.SurveySession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.SurveySession) error {
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.SurveySession) error {
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SurveySession, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveySession, error) {
	var out []*entity.SurveySession
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

func matchSession(s *entity.SurveySession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.ByEmail:
			if s.Email != sp.Email {
				return false
			}
		case specification.CompletedOnly:
			if !s.IsCompleted {
				return false
			}
		}
	}
	return true
}

type fakeResponseRepo struct {
	responses []*entity.SurveyResponse
	failNext  bool
}

func (r *fakeResponseRepo) Create(ctx context.Context, response *entity.SurveyResponse) error {
	if r.failNext {
		r.failNext = false
		return contract.NewBackendError("insert response", assert.AnError)
	}
	copied := *response
	r.responses = append(r.responses, &copied)
	return nil
}

func (r *fakeResponseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveyResponse, error) {
	var out []*entity.SurveyResponse
	for _, resp := range r.responses {
		ok := true
		for _, spec := range specs {
			if sp, is := spec.(specification.BySession); is && resp.SessionId != sp.SessionID {
				ok = false
			}
		}
		if ok {
			copied := *resp
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

type fakeUow struct {
	sessionRepo  *fakeSessionRepo
	responseRepo *fakeResponseRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }

func (u *fakeUow) Commit() error { return nil }

func (u *fakeUow) Rollback() error { return nil }
func (u *fakeUow) SurveySessionRepository() contract.SurveySessionRepository {
	return u.sessionRepo
}
func (u *fakeUow) SurveyResponseRepository() contract.SurveyResponseRepository {
	return u.responseRepo
}

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakePublisher struct {
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}

func (noopLogger) Sync() error { return nil }

type fixture struct {
	service   *surveyService
	sessions  *fakeSessionRepo
	responses *fakeResponseRepo
	publisher *fakePublisher
	stateRepo *memory.SessionStateRepository
	server    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message":   "Quel est votre âge ?",
			"category":  constant.CategoryDemographics,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}))
	t.Cleanup(srv.Close)

	sessions := newFakeSessionRepo()
	responses := &fakeResponseRepo{}
	publisher := &fakePublisher{}
	stateRepo := memory.NewSessionStateRepository()

	svc := &surveyService{
		uowFactory:       &fakeFactory{uow: &fakeUow{sessionRepo: sessions, responseRepo: responses}},
		stateRepo:        stateRepo,
		proxy:            proxyclient.NewClient(srv.URL),
		selector:         survey.NewSelector(rand.New(rand.NewSource(1))),
		followUpPolicy:   survey.NewFollowUpPolicy(),
		publisherService: publisher,
		appLogger:        noopLogger{},
	}

	return &fixture{
		service:   svc,
		sessions:  sessions,
		responses: responses,
		publisher: publisher,
		stateRepo: stateRepo,
		server:    srv,
	}
}

func TestStartSession_New(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{
		Email:   "new@example.com",
		Consent: true,
	})
	require.NoError(t, err)

	assert.False(t, res.Resumed)
	assert.Equal(t, 0, res.QuestionCount)
	assert.Equal(t, constant.MaxQuestionsPerSession, res.MaxQuestions)
	assert.Equal(t, fmt.Sprintf(constant.MessageWelcomeFormat, "New"), res.Welcome.Message)
	require.NotNil(t, res.Question)
	assert.Equal(t, "Quel est votre âge ?", res.Question.Message)

	stored := f.sessions.sessions[res.SessionId]
	require.NotNil(t, stored)
	assert.True(t, stored.ConsentRecontact)

	_, cached := f.stateRepo.Get(res.SessionId.String())
	assert.True(t, cached)
}

func TestStartSession_DuplicateCompletedRefused(t *testing.T) {
	f := newFixture(t)

	done := &entity.SurveySession{Id: uuid.New(), Email: "done@example.com", IsCompleted: true}
	f.sessions.sessions[done.Id] = done

	_, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "done@example.com"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateCompletedSession)
}

func TestStartSession_ResumesIncomplete(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	f.sessions.sessions[id] = &entity.SurveySession{
		Id:             id,
		Email:          "back@example.com",
		QuestionsCount: 4,
		CreatedAt:      time.Now().Add(-10 * time.Minute),
	}
	demo := constant.CategoryDemographics
	f.responses.responses = append(f.responses.responses, &entity.SurveyResponse{
		Id:        uuid.New(),
		SessionId: id,
		Question:  "Quel est votre âge ?",
		Answer:    "30 ans",
		Category:  &demo,
	})

	res, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "back@example.com"})
	require.NoError(t, err)

	assert.True(t, res.Resumed)
	assert.Equal(t, id, res.SessionId)
	assert.Equal(t, 4, res.QuestionCount)
	assert.Equal(t, constant.MessageResume, res.Welcome.Message)

	// The rebuilt state carries the stored exchange.
	state, cached := f.stateRepo.Get(id.String())
	require.True(t, cached)
	assert.Equal(t, 4, state.QuestionCount)
	assert.GreaterOrEqual(t, len(state.Transcript), 2)
}

func TestProcessAnswer_IncrementsAndAsksNext(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	res, err := f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{
		Answer: "Je travaille dans la finance depuis quinze ans.",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.QuestionCount)
	assert.False(t, res.IsFollowUp)
	assert.False(t, res.Completed)
	require.NotNil(t, res.Question)

	assert.Equal(t, 1, f.sessions.sessions[start.SessionId].QuestionsCount)
	require.Len(t, f.responses.responses, 1)
	assert.Equal(t, "Je travaille dans la finance depuis quinze ans.", f.responses.responses[0].Answer)
	assert.Equal(t, "Quel est votre âge ?", f.responses.responses[0].Question)
}

func TestProcessAnswer_RowKeepsAskedCategory(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)
	require.Equal(t, constant.CategoryDemographics, start.Question.Category)

	_, err = f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{
		Answer: "J'ai trente ans et je vis à Lyon depuis une dizaine d'années.",
	})
	require.NoError(t, err)

	// The row carries the category of the question it answers, not the one
	// picked for the question that follows.
	require.Len(t, f.responses.responses, 1)
	require.NotNil(t, f.responses.responses[0].Category)
	assert.Equal(t, constant.CategoryDemographics, *f.responses.responses[0].Category)
}

func TestProcessAnswer_VagueTriggersFollowUp(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	res, err := f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{Answer: "oui"})
	require.NoError(t, err)

	assert.True(t, res.IsFollowUp)
}

func TestProcessAnswer_CompletesAtLimit(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	var last *dto.AnswerResponse
	for i := 0; i < constant.MaxQuestionsPerSession; i++ {
		last, err = f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{
			Answer: "Une réponse suffisamment détaillée pour avancer normalement.",
		})
		require.NoError(t, err)
	}

	assert.True(t, last.Completed)
	assert.True(t, last.InputDisabled)
	assert.Equal(t, constant.MaxQuestionsPerSession, last.QuestionCount)
	require.NotEmpty(t, last.Messages)
	assert.Equal(t, constant.MessageMaxQuestionsReached, last.Messages[0].Message)

	stored := f.sessions.sessions[start.SessionId]
	assert.True(t, stored.IsCompleted)
	assert.NotNil(t, stored.CompletedAt)

	// Completion produced exactly one event.
	require.Len(t, f.publisher.payloads, 1)
	var evt dto.SessionCompletedMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &evt))
	assert.Equal(t, start.SessionId, evt.SessionId)
	assert.False(t, evt.Emergency)

	// Further answers are refused.
	_, err = f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{Answer: "encore"})
	assert.ErrorIs(t, err, apperror.ErrSessionNotActive)
}

func TestProcessAnswer_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ProcessAnswer(context.Background(), uuid.New(), &dto.AnswerRequest{Answer: "bonjour"})
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestProcessAnswer_ExpiredState(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	f.stateRepo.Delete(start.SessionId.String())

	_, err = f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{Answer: "bonjour"})
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)
}

func TestStartSession_ExpiredSessionNotResumed(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	f.sessions.sessions[id] = &entity.SurveySession{
		Id:        id,
		Email:     "late@example.com",
		CreatedAt: time.Now().Add(-constant.SessionTimeout - time.Minute),
	}

	_, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "late@example.com"})
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)
}

func TestProcessAnswer_ExpiredByAge(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	f.sessions.sessions[start.SessionId].CreatedAt = time.Now().Add(-constant.SessionTimeout - time.Minute)

	_, err = f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{Answer: "bonjour"})
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)

	// The stale transcript goes with it.
	_, cached := f.stateRepo.Get(start.SessionId.String())
	assert.False(t, cached)
}

func TestProcessAnswer_ResponseInsertFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	f.responses.failNext = true
	res, err := f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{
		Answer: "Une réponse suffisamment détaillée pour avancer normalement.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.QuestionCount)
}

func TestGetSession(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	status, err := f.service.GetSession(context.Background(), start.SessionId)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.False(t, status.IsCompleted)

	// State evicted: the session reads as expired until resumed.
	f.stateRepo.Delete(start.SessionId.String())
	status, err = f.service.GetSession(context.Background(), start.SessionId)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Equal(t, constant.MessageSessionExpired, status.Message)
}

func TestCompleteSession(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	_, err = f.service.ProcessAnswer(context.Background(), start.SessionId, &dto.AnswerRequest{
		Answer: "Une réponse suffisamment détaillée pour avancer normalement.",
	})
	require.NoError(t, err)

	feedback := "Très bonne expérience."
	res, err := f.service.CompleteSession(context.Background(), start.SessionId, &dto.CompleteSessionRequest{Feedback: &feedback})
	require.NoError(t, err)

	require.NotNil(t, res.Summary)
	require.NotNil(t, res.Thanks)
	assert.Equal(t, fmt.Sprintf(constant.MessageThanksFormat, 1, 1), res.Thanks.Message)

	stored := f.sessions.sessions[start.SessionId]
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.FinalFeedback)
	assert.Equal(t, feedback, *stored.FinalFeedback)
	require.Len(t, f.publisher.payloads, 1)

	// The cached state is gone once finalized.
	_, cached := f.stateRepo.Get(start.SessionId.String())
	assert.False(t, cached)

	// Completing twice is refused.
	_, err = f.service.CompleteSession(context.Background(), start.SessionId, &dto.CompleteSessionRequest{Feedback: &feedback})
	assert.ErrorIs(t, err, apperror.ErrSessionNotActive)
}

func TestEmergencyStop_NeverFails(t *testing.T) {
	f := newFixture(t)

	start, err := f.service.StartSession(context.Background(), &dto.StartSessionRequest{Email: "a@example.com"})
	require.NoError(t, err)

	reason := "Erreur de génération répétée."
	res := f.service.EmergencyStop(context.Background(), start.SessionId, reason)
	assert.True(t, res.Completed)
	assert.True(t, res.InputDisabled)
	require.NotEmpty(t, res.Messages)
	assert.Equal(t, constant.MessageEmergencyStop, res.Messages[0].Message)

	stored := f.sessions.sessions[start.SessionId]
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.FinalFeedback)
	assert.Equal(t, reason, *stored.FinalFeedback)

	// Even for a session that never existed it still answers calmly.
	res = f.service.EmergencyStop(context.Background(), uuid.New(), "")
	assert.True(t, res.Completed)
}
