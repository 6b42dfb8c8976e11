package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-survey-be/internal/entity"
	"ai-survey-be/internal/repository/specification"
	"ai-survey-be/internal/repository/unitofwork"
	"ai-survey-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.SurveySessionRepository())
	assert.NotNil(t, uow.SurveyResponseRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Session round trip", func(t *testing.T) {
		ctx := context.Background()

		session := entity.SurveySession{
			Id:               uuid.New(),
			Email:            "integration+" + uuid.NewString() + "@example.com",
			ConsentRecontact: true,
			CreatedAt:        time.Now(),
		}

		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.SurveySessionRepository().Create(ctx, &session))
		require.NoError(t, uow.Commit())

		found, err := uow.SurveySessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, session.Email, found.Email)
		assert.False(t, found.IsCompleted)

		category := "besoins"
		response := entity.SurveyResponse{
			Id:        uuid.New(),
			SessionId: session.Id,
			Question:  "Quels sont vos principaux défis actuels ?",
			Answer:    "Trop d'outils, pas assez de temps.",
			Category:  &category,
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.SurveyResponseRepository().Create(ctx, &response))

		count, err := uow.SurveyResponseRepository().Count(ctx, specification.BySession{SessionID: session.Id})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("FindOne on missing session returns nil", func(t *testing.T) {
		found, err := uow.SurveySessionRepository().FindOne(context.Background(), specification.ByID{ID: uuid.New()})
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}
