package main

import (
	"log"
	"os"
	"time"

	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/model"
	"ai-survey-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds one completed demo session so dashboards and queries have data to
// look at on a fresh database.
func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	const demoEmail = "demo@example.com"

	var existing model.SurveySession
	if err := db.Where("email = ?", demoEmail).First(&existing).Error; err == nil {
		log.Printf("Demo session for '%s' already exists, skipping...", demoEmail)
		return
	}

	log.Println("Seeding demo survey session...")

	now := time.Now()
	completedAt := now.Add(8 * time.Minute)
	feedback := "Expérience fluide, questions pertinentes."

	session := model.SurveySession{
		Id:               uuid.New(),
		Email:            demoEmail,
		ConsentRecontact: true,
		QuestionsCount:   constant.MaxQuestionsPerSession,
		IsCompleted:      true,
		FinalFeedback:    &feedback,
		CreatedAt:        now,
		CompletedAt:      &completedAt,
	}
	if err := db.Create(&session).Error; err != nil {
		log.Fatalf("Error creating demo session: %v", err)
	}

	demographie := constant.CategoryDemographics
	besoins := constant.CategoryNeeds
	usage := constant.CategoryUsage

	responses := []model.SurveyResponse{
		{Id: uuid.New(), SessionId: session.Id, Question: "Quel est votre âge ?", Answer: "34 ans, je travaille depuis une dizaine d'années.", Category: &demographie, CreatedAt: now.Add(1 * time.Minute)},
		{Id: uuid.New(), SessionId: session.Id, Question: "Quels sont vos principaux défis actuels ?", Answer: "Centraliser les retours clients sans multiplier les outils.", Category: &besoins, CreatedAt: now.Add(3 * time.Minute)},
		{Id: uuid.New(), SessionId: session.Id, Question: "À quelle fréquence utilisez-vous des outils similaires ?", Answer: "Tous les jours, principalement en équipe.", Category: &usage, CreatedAt: now.Add(5 * time.Minute)},
	}

	for _, r := range responses {
		if err := db.Create(&r).Error; err != nil {
			log.Printf("Error creating demo response: %v", err)
		}
	}

	log.Println("Demo seeding completed!")
}
