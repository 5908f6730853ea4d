package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"shop-relay/ai"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/keywords"
	"shop-relay/observability"
	"shop-relay/repositories"
	"time"
)

// BotService is the bot policy engine. The decision is derived from the stored history
// on every customer message, no per conversation state is kept.
type BotService struct {
	log        *slog.Logger
	repository repositories.IMessageRepository
	responder  ai.IResponder
	handoff    *keywords.Matcher
	scheduler  contract.Scheduler
	metrics    *observability.Metrics
	jobs       chan domain.ChatMessage
	delay      time.Duration
	now        func() time.Time
}

var _ BotTrigger = (*BotService)(nil)

func NewBotService(
	log *slog.Logger,
	repository repositories.IMessageRepository,
	responder ai.IResponder,
	handoff *keywords.Matcher,
	scheduler contract.Scheduler,
	metrics *observability.Metrics,
	queueSize int,
) *BotService {
	return &BotService{
		log:        log,
		repository: repository,
		responder:  responder,
		handoff:    handoff,
		scheduler:  scheduler,
		metrics:    metrics,
		jobs:       make(chan domain.ChatMessage, queueSize),
		delay:      domain.BotReplyDelay,
		now:        time.Now,
	}
}

// ShouldRespond is the trigger check: a customer writing to the admin channel.
func ShouldRespond(message domain.ChatMessage) bool {
	return message.Receiver == domain.AdminIdentity && domain.IsCustomer(message.Sender)
}

// Submit queues message for the bot workers without blocking the chat relay.
// A full queue drops the message: the conversation stays open for a human.
func (b *BotService) Submit(_ context.Context, message domain.ChatMessage) bool {
	if !ShouldRespond(message) {
		return false
	}
	select {
	case b.jobs <- message:
		return true
	default:
		b.log.Warn("Bot queue full, no automatic reply", "user_id", message.Sender)
		b.metrics.BotOutcomes.WithLabelValues(observability.BotDropped).Inc()
		return false
	}
}

func (b *BotService) Jobs() <-chan domain.ChatMessage { return b.jobs }

// Handle runs the policy for one persisted customer message and returns its outcome.
// Every failure is logged and swallowed.
func (b *BotService) Handle(ctx context.Context, message domain.ChatMessage) string {
	outcome := b.handle(ctx, message)
	b.metrics.BotOutcomes.WithLabelValues(outcome).Inc()
	return outcome
}

func (b *BotService) handle(ctx context.Context, message domain.ChatMessage) string {
	if !ShouldRespond(message) {
		return observability.BotSuppressed
	}
	userID := message.Sender

	// A human request is acknowledged even while an admin is active in the conversation.
	if b.handoff.Contains(message.Message) {
		b.log.Info("Customer asks for a human, sending handoff", "user_id", userID)
		notice := event.New(event.AdminNotification, event.AdminNotice{UserID: userID, Message: domain.HandoffAdminNotice})
		if !b.reply(ctx, userID, domain.HandoffReply, contract.Delivery{Room: domain.AdminRoom(), Event: notice}) {
			return observability.BotFailed
		}
		return observability.BotHandoff
	}

	recent, err := b.repository.Recent(ctx, userID, domain.SuppressionLookback)
	if err != nil {
		b.log.Error("Bot could not read the conversation", "user_id", userID, "error", err)
		return observability.BotFailed
	}
	if domain.IsAdminActive(recent, b.now()) {
		b.log.Info("Admin is handling this chat, bot paused", "user_id", userID)
		return observability.BotSuppressed
	}

	start := time.Now()
	text, err := b.responder.Reply(ctx, message.Message, recent)
	b.metrics.BotLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		b.logGenerationFailure(userID, err)
		return observability.BotFailed
	}
	if !b.reply(ctx, userID, text) {
		return observability.BotFailed
	}
	return observability.BotReplied
}

// reply persists a bot message to userID and schedules its delivery, after the reply delay,
// to the user's room then the admin room, followed by extra.
func (b *BotService) reply(ctx context.Context, userID, text string, extra ...contract.Delivery) bool {
	stored, err := b.repository.Store(ctx, domain.NewBotMessage(userID, text, b.now().UTC()))
	if err != nil {
		b.log.Error("Bot message not saved", "user_id", userID, "error", err)
		return false
	}

	userRoom, err := domain.UserRoom(userID)
	if err != nil {
		b.log.Error("Bot reply has no room", "user_id", userID, "error", err)
		return false
	}
	out := event.New(event.PrivateMessage, stored)
	deliveries := append([]contract.Delivery{
		{Room: userRoom, Event: out},
		{Room: domain.AdminRoom(), Event: out},
	}, extra...)

	if err := b.scheduler.Schedule(ctx, b.now().Add(b.delay), deliveries...); err != nil {
		b.log.Warn("Bot reply saved but not scheduled", "user_id", userID, "error", err)
	}
	return true
}

func (b *BotService) logGenerationFailure(userID string, err error) {
	switch {
	case stderrors.Is(err, errors.ErrGeneratorDisabled):
		b.log.Debug("Bot generation disabled", "user_id", userID)
	case stderrors.Is(err, errors.ErrGenerationAuth):
		b.log.Error("Bot generation rejected the configuration", "user_id", userID, "error", err)
	case stderrors.Is(err, errors.ErrGenerationQuota):
		b.log.Warn("Bot generation quota exceeded", "user_id", userID, "error", err)
	default:
		b.log.Warn("Bot generation failed", "user_id", userID, "error", err)
	}
}
