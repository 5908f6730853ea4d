package workers

import (
	"context"
	"log/slog"
	"shop-relay/domain"
)

// BotHandler decides and produces the bot answer to one customer message.
type BotHandler interface {
	Handle(ctx context.Context, message domain.ChatMessage) string
}

// BotWorker drains the bot queue. Several workers may share the same queue.
type BotWorker struct {
	log  *slog.Logger
	jobs <-chan domain.ChatMessage
	bot  BotHandler
}

func NewBotWorker(log *slog.Logger, jobs <-chan domain.ChatMessage, bot BotHandler) *BotWorker {
	return &BotWorker{log: log, jobs: jobs, bot: bot}
}

func (w *BotWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping bot worker")
			return nil
		case message, ok := <-w.jobs:
			if !ok {
				w.log.Debug("Bot queue closed")
				return nil
			}
			outcome := w.bot.Handle(ctx, message)
			w.log.Debug("Bot handled customer message", "user_id", message.Sender, "outcome", outcome)
		}
	}
}
