// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-survey-be/internal/dto"
	"ai-survey-be/internal/pkg/mailer"
	"ai-survey-be/pkg/events"
	pkgNats "ai-survey-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService handles completed-session events off the internal bus:
// it logs the outcome, thanks consenting respondents by email, and mirrors
// the event to NATS for external subscribers.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	emailService   mailer.IEmailService
	eventPublisher *pkgNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	eventPublisher *pkgNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		emailService:   emailService,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SessionCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Session %s completed: %d questions, categories=%v, emergency=%v",
		payload.SessionId, payload.QuestionsCount, payload.Categories, payload.Emergency)

	if payload.Consent && !payload.Emergency && cs.emailService != nil {
		if err := cs.emailService.SendThankYou(payload.Email, payload.QuestionsCount); err != nil {
			// The session is already finalized; the mail can be re-sent by hand.
			log.Printf("[WARN] Thank-you email to %s failed: %v", payload.Email, err)
		}
	}

	if cs.eventPublisher != nil {
		evt := events.NewSessionCompleted(
			payload.SessionId.String(),
			payload.Email,
			payload.QuestionsCount,
			payload.Categories,
			payload.Emergency,
		)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish SESSION_COMPLETED event: %v", err)
		}
	}

	msg.Ack()
}
