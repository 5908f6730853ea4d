//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/observability"
	"shop-relay/repositories"
	"time"
)

type IChatService interface {
	OnJoin(ctx context.Context, p *domain.Participant, payload event.JoinPayload) error
	OnSend(ctx context.Context, p *domain.Participant, message domain.ChatMessage) (domain.ChatMessage, error)
	ChatUsers(ctx context.Context) ([]string, error)
}

// BotTrigger receives customer messages addressed to the admin.
type BotTrigger interface {
	Submit(ctx context.Context, message domain.ChatMessage) bool
}

// ChatService is the chat relay: it persists each message, then delivers it to the
// receiver's room and echoes it to the sending connection.
type ChatService struct {
	log        *slog.Logger
	registry   contract.IRegistry
	router     contract.IRouter
	repository repositories.IMessageRepository
	bot        BotTrigger
	observer   contract.MessageSink
	metrics    *observability.Metrics
	now        func() time.Time
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(
	log *slog.Logger,
	registry contract.IRegistry,
	router contract.IRouter,
	repository repositories.IMessageRepository,
	bot BotTrigger,
	observer contract.MessageSink,
	metrics *observability.Metrics,
) *ChatService {
	return &ChatService{
		log:        log,
		registry:   registry,
		router:     router,
		repository: repository,
		bot:        bot,
		observer:   observer,
		metrics:    metrics,
		now:        time.Now,
	}
}

// OnJoin puts the connection in its chat room and replays the conversation history.
// The admin joins the shared admin room; adminId selects which customer history it gets
// without touching its room membership.
func (s *ChatService) OnJoin(ctx context.Context, p *domain.Participant, payload event.JoinPayload) error {
	if !p.CanActAs(payload.UserID) {
		return errors.ErrIdentityMismatch
	}
	room, err := domain.ChatRoomFor(payload.UserID)
	if err != nil {
		return err
	}

	role := domain.RoleUser
	if room == domain.AdminRoom() {
		role = domain.RoleAdmin
	}
	if err := s.registry.Join(p.ConnID, room, role, payload.UserID); err != nil {
		return err
	}
	if p.Anonymous {
		p.Identity = payload.UserID
	}

	target := payload.UserID
	if role == domain.RoleAdmin && payload.AdminID != "" {
		target = payload.AdminID
	}

	history := make([]domain.ChatMessage, 0)
	if domain.IsCustomer(target) {
		history, err = s.repository.History(ctx, target)
		if err != nil {
			return fmt.Errorf("failed to load history of %s: %w", target, err)
		}
		if history == nil {
			history = make([]domain.ChatMessage, 0)
		}
	}
	s.log.Debug("Chat joined", "conn_id", p.ConnID, "room", room.String(), "history_of", target, "messages", len(history))
	s.router.EmitTo(ctx, p.ConnID, event.New(event.PreviousMessages, history))
	return nil
}

// OnSend persists message before any delivery. A message without a deliverable room is
// rejected before it is saved. A persistence failure is returned wrapped in
// ErrPersistFailed and nothing is delivered.
func (s *ChatService) OnSend(ctx context.Context, p *domain.Participant, message domain.ChatMessage) (domain.ChatMessage, error) {
	if message.Sender == domain.BotIdentity {
		return domain.ChatMessage{}, errors.ErrForbidden
	}
	if !p.CanActAs(message.Sender) {
		return domain.ChatMessage{}, errors.ErrIdentityMismatch
	}
	if err := message.Validate(); err != nil {
		return domain.ChatMessage{}, err
	}
	room, err := domain.ChatRoomFor(message.Receiver)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	message.ID = ""
	if message.Timestamp.IsZero() {
		message.Timestamp = s.now().UTC()
	}

	stored, err := s.repository.Store(ctx, message)
	if err != nil {
		s.log.Error("Chat message not saved", "sender", message.Sender, "receiver", message.Receiver, "error", err)
		return domain.ChatMessage{}, fmt.Errorf("%w: %w", errors.ErrPersistFailed, err)
	}
	s.metrics.ChatMessages.WithLabelValues(senderKind(stored.Sender)).Inc()

	out := event.New(event.PrivateMessage, stored)
	delivered := s.router.Broadcast(ctx, room, out)
	s.router.EmitTo(ctx, p.ConnID, out)
	s.log.Debug("Chat message relayed", "id", stored.ID, "room", room.String(), "delivered", delivered)

	if s.observer != nil {
		_ = s.observer.Consume(ctx, stored)
	}
	if s.bot != nil && stored.Receiver == domain.AdminIdentity && stored.FromCustomer() {
		s.bot.Submit(ctx, stored)
	}
	return stored, nil
}

func (s *ChatService) ChatUsers(ctx context.Context) ([]string, error) {
	return s.repository.ChatUsers(ctx)
}

func senderKind(sender string) string {
	if domain.IsReserved(sender) {
		return sender
	}
	return "customer"
}
