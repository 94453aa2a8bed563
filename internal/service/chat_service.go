package service

import (
	"context"
	"strings"
	"time"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	eventspkg "ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats"
	"ai-research-be/pkg/pipeline"
	"ai-research-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IChatService defines the chat service interface
type IChatService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	Ask(ctx context.Context, request *dto.AskRequest, document, image []byte) (<-chan pipeline.StreamEvent, error)
}

// StreamFanout delivers stream events to live subscribers.
type StreamFanout interface {
	Publish(conversationID uuid.UUID, event pipeline.StreamEvent)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	dispatcher  *pipeline.Dispatcher
	transcripts IPublisherService
	natsPub     *pktNats.Publisher
	sessionRepo *memory.SessionRepository
	fanout      StreamFanout
	log         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	dispatcher *pipeline.Dispatcher,
	transcripts IPublisherService,
	natsPub *pktNats.Publisher,
	sessionRepo *memory.SessionRepository,
	fanout StreamFanout,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		dispatcher:  dispatcher,
		transcripts: transcripts,
		natsPub:     natsPub,
		sessionRepo: sessionRepo,
		fanout:      fanout,
		log:         log,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = defaultSessionTitle
	}

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: now,
	}

	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          "Hi, how can I help you ?",
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return responses, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, gorm.ErrRecordNotFound
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, msg := range messages {
		responses[i] = &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Route:     msg.Route,
			CreatedAt: msg.CreatedAt,
		}
	}
	return responses, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return gorm.ErrRecordNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	cs.sessionRepo.Delete(sessionId.String())
	return nil
}

// Ask runs the question through the pipeline. The returned channel carries
// the full event stream; the service tees it to live subscribers, and on
// completion archives the exchange and emits system events. ctx must stay
// alive until the stream closes.
func (cs *chatService) Ask(ctx context.Context, request *dto.AskRequest, document, image []byte) (<-chan pipeline.StreamEvent, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, gorm.ErrRecordNotFound
	}

	askedAt := time.Now()
	events, outcome := cs.dispatcher.Process(ctx, pipeline.Request{
		Query:          request.Query,
		ConversationID: request.ChatSessionId.String(),
		Attachments: pipeline.Attachments{
			Document: document,
			Image:    image,
		},
	})

	out := make(chan pipeline.StreamEvent)
	go func() {
		defer close(out)

		result, ok := <-outcome
		if ok && !result.Rejected {
			if err := cs.natsPub.Publish(ctx, eventspkg.NewRequestAccepted(request.ChatSessionId.String(), result.Route)); err != nil {
				cs.log.Warn("chat", "failed to publish accepted event", map[string]interface{}{"error": err.Error()})
			}
		}

		var answer strings.Builder
		for event := range events {
			cs.fanout.Publish(request.ChatSessionId, event)
			if event.Role == constant.StreamRoleBot {
				answer.WriteString(event.Token)
			}

			select {
			case out <- event:
			case <-ctx.Done():
				// Drain so the pipeline goroutine can finish.
				for range events {
				}
				return
			}
		}

		if !ok {
			return
		}
		cs.finish(request.ChatSessionId, result, answer.String(), askedAt)
	}()

	return out, nil
}

// finish archives the completed exchange and fires system events. It runs
// after the stream closed, so failures only get logged.
func (cs *chatService) finish(sessionId uuid.UUID, result pipeline.Outcome, answer string, askedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if result.Rejected {
		if err := cs.natsPub.Publish(ctx, eventspkg.NewRequestRejected(sessionId.String(), result.Reason)); err != nil {
			cs.log.Warn("chat", "failed to publish rejection event", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	if err := cs.natsPub.Publish(ctx, eventspkg.NewRequestCompleted(sessionId.String(), result.Route, len(answer))); err != nil {
		cs.log.Warn("chat", "failed to publish completion event", map[string]interface{}{"error": err.Error()})
	}

	if err := cs.transcripts.Publish(ctx, dto.TranscriptMessage{
		ChatSessionId: sessionId,
		Query:         result.Query,
		Answer:        answer,
		Route:         result.Route,
		AskedAt:       askedAt,
	}); err != nil {
		cs.log.Error("chat", "failed to publish transcript", map[string]interface{}{"error": err.Error()})
	}

	cs.sessionRepo.Save(&store.ConversationState{
		ID:         sessionId.String(),
		LastRoute:  result.Route,
		LastQuery:  result.Query,
		LastAnswer: answer,
		Turns:      cs.turns(sessionId) + 1,
	})
}

func (cs *chatService) turns(sessionId uuid.UUID) int {
	if state, found := cs.sessionRepo.Get(sessionId.String()); found {
		return state.Turns
	}
	return 0
}
