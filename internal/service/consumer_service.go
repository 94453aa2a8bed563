package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const defaultSessionTitle = "Unnamed session"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService archives completed exchanges: for every transcript message
// it persists the question and the answer, and names still-unnamed sessions
// after their first question.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
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
	var payload dto.TranscriptMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal transcript: %v", err)
		msg.Ack() // invalid payloads never become valid, do not retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: payload.ChatSessionId})
	if err != nil {
		log.Printf("[ERROR] Failed to load session %s: %v", payload.ChatSessionId, err)
		msg.Nack()
		return
	}
	if session == nil {
		// Session deleted while the answer was streaming.
		msg.Ack()
		return
	}

	now := time.Now()
	records := []*entity.ChatMessage{
		{
			Id:            uuid.New(),
			Chat:          payload.Query,
			Role:          constant.ChatMessageRoleUser,
			Route:         payload.Route,
			ChatSessionId: payload.ChatSessionId,
			CreatedAt:     payload.AskedAt,
		},
		{
			Id:            uuid.New(),
			Chat:          payload.Answer,
			Role:          constant.ChatMessageRoleModel,
			Route:         payload.Route,
			ChatSessionId: payload.ChatSessionId,
			CreatedAt:     now,
		},
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().CreateBatch(ctx, records); err != nil {
		log.Printf("[ERROR] Failed to archive transcript for session %s: %v", payload.ChatSessionId, err)
		msg.Nack()
		return
	}

	if session.Title == defaultSessionTitle && payload.Query != "" {
		session.Title = sessionTitleFromQuery(payload.Query)
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			log.Printf("[ERROR] Failed to rename session %s: %v", payload.ChatSessionId, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transcript: %v", err)
		msg.Nack()
		return
	}

	msg.Ack()
}

// sessionTitleFromQuery trims the first question down to a listing title.
func sessionTitleFromQuery(query string) string {
	title := strings.Join(strings.Fields(query), " ")
	if len(title) > 60 {
		title = title[:60]
		if idx := strings.LastIndex(title, " "); idx > 20 {
			title = title[:idx]
		}
		title += "..."
	}
	return title
}
