package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/dto"
	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/pkg/logger"
	"ai-survey-be/internal/repository/memory"
	"ai-survey-be/internal/repository/specification"
	"ai-survey-be/internal/repository/unitofwork"
	"ai-survey-be/internal/service/apperror"
	"ai-survey-be/pkg/proxyclient"
	"ai-survey-be/pkg/store"
	"ai-survey-be/pkg/survey"

	"github.com/google/uuid"
)

// ISurveyService defines the survey session service interface
type ISurveyService interface {
	StartSession(ctx context.Context, request *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	ProcessAnswer(ctx context.Context, sessionId uuid.UUID, request *dto.AnswerRequest) (*dto.AnswerResponse, error)
	GetSession(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStatusResponse, error)
	CompleteSession(ctx context.Context, sessionId uuid.UUID, request *dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error)
	EmergencyStop(ctx context.Context, sessionId uuid.UUID, reason string) *dto.AnswerResponse
}

// surveyService coordinates the conversation flow: session lifecycle in the
// database, live transcript in the state cache, question generation through
// the generate endpoint.
type surveyService struct {
	uowFactory       unitofwork.RepositoryFactory
	stateRepo        *memory.SessionStateRepository
	proxy            *proxyclient.Client
	selector         *survey.Selector
	followUpPolicy   *survey.FollowUpPolicy
	publisherService IPublisherService
	appLogger        logger.ILogger
}

func NewSurveyService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.SessionStateRepository,
	proxy *proxyclient.Client,
	publisherService IPublisherService,
	appLogger logger.ILogger,
) ISurveyService {
	return &surveyService{
		uowFactory:       uowFactory,
		stateRepo:        stateRepo,
		proxy:            proxy,
		selector:         survey.NewSelector(rand.New(rand.NewSource(time.Now().UnixNano()))),
		followUpPolicy:   survey.NewFollowUpPolicy(),
		publisherService: publisherService,
		appLogger:        appLogger,
	}
}

// StartSession creates a new session for the email, or resumes the most
// recent incomplete one. An email with a completed session is refused.
func (ss *surveyService) StartSession(ctx context.Context, request *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	completed, err := uow.SurveySessionRepository().FindOne(ctx,
		specification.ByEmail{Email: request.Email},
		specification.CompletedOnly{},
	)
	if err != nil {
		return nil, err
	}
	if completed != nil {
		return nil, apperror.ErrDuplicateCompletedSession
	}

	existing, err := uow.SurveySessionRepository().FindOne(ctx,
		specification.ByEmail{Email: request.Email},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if sessionExpired(existing) {
			ss.stateRepo.Delete(existing.Id.String())
			return nil, apperror.ErrSessionExpired
		}
		return ss.resumeSession(ctx, uow, existing)
	}

	session := entity.SurveySession{
		Id:               uuid.New(),
		Email:            request.Email,
		ConsentRecontact: request.Consent,
		CreatedAt:        time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SurveySessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	state := &store.SessionState{
		SessionID:    session.Id.String(),
		Email:        session.Email,
		ConsentGiven: session.ConsentRecontact,
		StartedAt:    session.CreatedAt,
	}

	question := ss.nextQuestion(ctx, state, constant.MessageReadyToStart, "")
	state.CurrentCategory = question.Category
	ss.stateRepo.Save(state)

	return &dto.StartSessionResponse{
		SessionId:     session.Id,
		Resumed:       false,
		QuestionCount: 0,
		MaxQuestions:  constant.MaxQuestionsPerSession,
		Welcome:       botMessage(welcomeMessage(session.Email), ""),
		Question:      question,
	}, nil
}

// resumeSession picks up an incomplete session. The transcript comes from the
// state cache when still warm, otherwise it is rebuilt from the stored rows.
func (ss *surveyService) resumeSession(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.SurveySession) (*dto.StartSessionResponse, error) {
	state, found := ss.stateRepo.Get(session.Id.String())
	if !found {
		rebuilt, err := ss.rebuildState(ctx, uow, session)
		if err != nil {
			return nil, err
		}
		state = rebuilt
	}

	question := ss.nextQuestion(ctx, state, constant.MessageReadyToStart, state.CurrentCategory)
	state.CurrentCategory = question.Category
	ss.stateRepo.Save(state)

	return &dto.StartSessionResponse{
		SessionId:     session.Id,
		Resumed:       true,
		QuestionCount: state.QuestionCount,
		MaxQuestions:  constant.MaxQuestionsPerSession,
		Welcome:       botMessage(constant.MessageResume, ""),
		Question:      question,
	}, nil
}

func (ss *surveyService) rebuildState(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.SurveySession) (*store.SessionState, error) {
	responses, err := uow.SurveyResponseRepository().FindAll(ctx,
		specification.BySession{SessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	state := &store.SessionState{
		SessionID:     session.Id.String(),
		Email:         session.Email,
		ConsentGiven:  session.ConsentRecontact,
		QuestionCount: session.QuestionsCount,
		StartedAt:     session.CreatedAt,
	}
	for _, r := range responses {
		state.AppendTranscript(constant.TranscriptRoleAssistant, r.Question, r.Category)
		state.AppendTranscript(constant.TranscriptRoleUser, r.Answer, r.Category)
		if r.Category != nil {
			state.CurrentCategory = *r.Category
		}
	}
	return state, nil
}

// ProcessAnswer records the answer, advances the question counter and asks
// the next question. At the question limit the session completes instead.
func (ss *surveyService) ProcessAnswer(ctx context.Context, sessionId uuid.UUID, request *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SurveySessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}
	if session.IsCompleted {
		return nil, apperror.ErrSessionNotActive
	}
	if sessionExpired(session) {
		ss.stateRepo.Delete(sessionId.String())
		return nil, apperror.ErrSessionExpired
	}

	state, found := ss.stateRepo.Get(sessionId.String())
	if !found {
		return nil, apperror.ErrSessionExpired
	}

	isFollowUp := ss.followUpPolicy.NeedsFollowUp(request.Answer, state.QuestionCount, constant.MaxQuestionsPerSession)

	// The row is the durable record of the exchange, tagged with the
	// category of the question it answers. Losing one row is preferable to
	// losing the whole conversation, so a failed insert is logged and the
	// flow continues.
	ss.persistResponse(ctx, uow, session.Id, lastAskedQuestion(state), request.Answer, state.CurrentCategory)

	session.QuestionsCount++
	if session.QuestionsCount >= constant.MaxQuestionsPerSession {
		now := time.Now()
		session.IsCompleted = true
		session.CompletedAt = &now
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()
	if err := uow.SurveySessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	state.QuestionCount = session.QuestionsCount

	if session.IsCompleted {
		state.AppendTranscript(constant.TranscriptRoleUser, request.Answer, nil)
		ss.stateRepo.Save(state)
		ss.publishCompletion(ctx, session, state, false)

		return &dto.AnswerResponse{
			QuestionCount: state.QuestionCount,
			MaxQuestions:  constant.MaxQuestionsPerSession,
			IsFollowUp:    false,
			Completed:     true,
			InputDisabled: true,
			Messages: []dto.BotMessage{
				*botMessage(constant.MessageMaxQuestionsReached, ""),
				*botMessage(constant.MessageInputDisabled, ""),
			},
		}, nil
	}

	category := state.CurrentCategory
	if !isFollowUp {
		category = ss.selector.Next(state.QuestionCount, state.Stats().CategoriesCovered)
	}

	question := ss.nextQuestion(ctx, state, request.Answer, category)
	state.CurrentCategory = question.Category
	ss.stateRepo.Save(state)

	return &dto.AnswerResponse{
		QuestionCount: state.QuestionCount,
		MaxQuestions:  constant.MaxQuestionsPerSession,
		IsFollowUp:    isFollowUp,
		Completed:     false,
		Question:      question,
	}, nil
}

// GetSession reports the stored progress of a session.
func (ss *surveyService) GetSession(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStatusResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SurveySessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}

	_, active := ss.stateRepo.Get(sessionId.String())
	response := &dto.SessionStatusResponse{
		SessionId:     session.Id,
		Email:         session.Email,
		QuestionCount: session.QuestionsCount,
		MaxQuestions:  constant.MaxQuestionsPerSession,
		IsCompleted:   session.IsCompleted,
		IsActive:      active && !session.IsCompleted,
	}
	if !active && !session.IsCompleted {
		response.Message = constant.MessageSessionExpired
	}
	return response, nil
}

// CompleteSession finalizes a session, stores the optional free-form
// feedback and returns the thank-you message with a conversation summary.
func (ss *surveyService) CompleteSession(ctx context.Context, sessionId uuid.UUID, request *dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SurveySessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}
	if session.IsCompleted && session.FinalFeedback != nil {
		return nil, apperror.ErrSessionNotActive
	}

	wasCompleted := session.IsCompleted
	if !session.IsCompleted {
		now := time.Now()
		session.IsCompleted = true
		session.CompletedAt = &now
	}
	session.FinalFeedback = request.Feedback

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()
	if err := uow.SurveySessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	state, found := ss.stateRepo.Get(sessionId.String())
	if !found {
		rebuilt, err := ss.rebuildState(ctx, uow, session)
		if err != nil {
			return nil, err
		}
		state = rebuilt
	}

	// Avoid a duplicate event when the question limit already completed it.
	if !wasCompleted {
		ss.publishCompletion(ctx, session, state, false)
	}
	ss.stateRepo.Delete(sessionId.String())

	return &dto.CompleteSessionResponse{
		Thanks:  botMessage(thanksMessage(session.QuestionsCount, state.Stats().CategoriesCovered), ""),
		Summary: buildSummary(state),
	}, nil
}

// EmergencyStop shuts a session down after an unrecoverable error. The
// reason is kept as the session's final feedback. It never returns an error:
// whatever could be saved is saved, and the caller always gets a terminal
// message to show.
func (ss *surveyService) EmergencyStop(ctx context.Context, sessionId uuid.UUID, reason string) *dto.AnswerResponse {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	questionCount := 0
	session, err := uow.SurveySessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		ss.appLogger.Error("survey", "emergency stop: session lookup failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
	if session != nil {
		questionCount = session.QuestionsCount
		if !session.IsCompleted {
			now := time.Now()
			session.IsCompleted = true
			session.CompletedAt = &now
			if reason != "" {
				session.FinalFeedback = &reason
			}
			if err := uow.Begin(ctx); err == nil {
				if err := uow.SurveySessionRepository().Update(ctx, session); err != nil {
					uow.Rollback()
					ss.appLogger.Error("survey", "emergency stop: session update failed", map[string]interface{}{
						"session_id": sessionId.String(),
						"error":      err.Error(),
					})
				} else if err := uow.Commit(); err != nil {
					ss.appLogger.Error("survey", "emergency stop: commit failed", map[string]interface{}{
						"session_id": sessionId.String(),
						"error":      err.Error(),
					})
				}
			}
		}
	}

	if state, found := ss.stateRepo.Get(sessionId.String()); found {
		questionCount = state.QuestionCount
		if session != nil {
			ss.publishCompletion(ctx, session, state, true)
		}
	}
	ss.stateRepo.Delete(sessionId.String())

	return &dto.AnswerResponse{
		QuestionCount: questionCount,
		MaxQuestions:  constant.MaxQuestionsPerSession,
		Completed:     true,
		InputDisabled: true,
		Messages: []dto.BotMessage{
			*botMessage(constant.MessageEmergencyStop, ""),
		},
	}
}

// nextQuestion asks the generate endpoint for the upcoming question. When
// the endpoint is unreachable the category's own question list stands in, so
// the conversation keeps moving.
func (ss *surveyService) nextQuestion(ctx context.Context, state *store.SessionState, message, category string) *dto.BotMessage {
	if category == "" {
		category = ss.selector.Next(state.QuestionCount, state.Stats().CategoriesCovered)
	}

	reply, err := ss.proxy.SendMessage(ctx, state, message, category)
	if err != nil {
		ss.appLogger.Warn("survey", "question generation failed, using fallback", map[string]interface{}{
			"session_id": state.SessionID,
			"category":   category,
			"error":      err.Error(),
		})
		fallback := fallbackQuestion(category, state.QuestionCount)
		state.AppendTranscript(constant.TranscriptRoleAssistant, fallback, &category)
		return botMessage(fallback, category)
	}

	replyCategory := reply.Category
	if replyCategory == "" {
		replyCategory = category
	}
	return &dto.BotMessage{
		Message:            reply.Message,
		Category:           replyCategory,
		SuggestedQuestions: reply.SuggestedQuestions,
		Timestamp:          reply.Timestamp,
	}
}

func (ss *surveyService) persistResponse(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, question, answer, category string) {
	var categoryRef *string
	if category != "" {
		categoryRef = &category
	}
	response := entity.SurveyResponse{
		Id:        uuid.New(),
		SessionId: sessionId,
		Question:  question,
		Answer:    answer,
		Category:  categoryRef,
		CreatedAt: time.Now(),
	}
	if err := uow.SurveyResponseRepository().Create(ctx, &response); err != nil {
		ss.appLogger.Warn("survey", "response insert failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}

func (ss *surveyService) publishCompletion(ctx context.Context, session *entity.SurveySession, state *store.SessionState, emergency bool) {
	stats := state.Stats()
	payload := dto.SessionCompletedMessage{
		SessionId:      session.Id,
		Email:          session.Email,
		Consent:        session.ConsentRecontact,
		QuestionsCount: session.QuestionsCount,
		Categories:     stats.CategoriesCovered,
		Emergency:      emergency,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		ss.appLogger.Error("survey", "completion payload marshal failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return
	}
	// The event feeds follow-up work (thank-you email, analytics). The
	// session itself is already finalized, so failures only get logged.
	if err := ss.publisherService.Publish(ctx, payloadJson); err != nil {
		ss.appLogger.Warn("survey", "completion event publish failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
}

// sessionExpired caps a session's life at the timeout measured from its
// creation, independent of recent activity.
func sessionExpired(session *entity.SurveySession) bool {
	return time.Since(session.CreatedAt) > constant.SessionTimeout
}

// welcomeMessage greets the participant by the first name taken from the
// email's local part.
func welcomeMessage(email string) string {
	name, _, _ := strings.Cut(email, "@")
	if name == "" {
		name = constant.WelcomeFallbackName
	} else {
		runes := []rune(name)
		runes[0] = unicode.ToUpper(runes[0])
		name = string(runes)
	}
	return fmt.Sprintf(constant.MessageWelcomeFormat, name)
}

func thanksMessage(questionCount int, categoriesCovered []string) string {
	return fmt.Sprintf(constant.MessageThanksFormat, questionCount, len(categoriesCovered))
}

func botMessage(text, category string) *dto.BotMessage {
	return &dto.BotMessage{
		Message:   text,
		Category:  category,
		Timestamp: time.Now().UTC(),
	}
}

// lastAskedQuestion finds the most recent assistant message, which is the
// question the incoming answer responds to.
func lastAskedQuestion(state *store.SessionState) string {
	for i := len(state.Transcript) - 1; i >= 0; i-- {
		if state.Transcript[i].Role == constant.TranscriptRoleAssistant {
			return state.Transcript[i].Message
		}
	}
	return ""
}

func fallbackQuestion(category string, questionCount int) string {
	def := constant.CategoryByKey(category)
	if def == nil {
		def = constant.CategoryByKey(constant.CategoryNeeds)
	}
	return def.Questions[questionCount%len(def.Questions)]
}

func buildSummary(state *store.SessionState) *dto.SessionSummary {
	stats := state.Stats()
	duration := int(time.Since(state.StartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	return &dto.SessionSummary{
		TotalExchanges:      stats.TotalExchanges,
		CategoriesCovered:   stats.CategoriesCovered,
		DurationMinutes:     duration,
		AverageAnswerLength: int(stats.AverageMessageLength),
	}
}
