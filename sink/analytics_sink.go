package sink

import (
	"context"
	"log/slog"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/keywords"
	"shop-relay/observability"

	"github.com/abadojack/whatlanggo"
)

const unknownLanguage = "und"

// AnalyticsSink tags customer messages with their topics and language.
type AnalyticsSink struct {
	topics  *keywords.Matcher
	metrics *observability.Metrics
	log     *slog.Logger
}

var _ contract.MessageSink = (*AnalyticsSink)(nil)

func NewAnalyticsSink(topics *keywords.Matcher, metrics *observability.Metrics, log *slog.Logger) *AnalyticsSink {
	return &AnalyticsSink{topics: topics, metrics: metrics, log: log}
}

func (a *AnalyticsSink) Consume(_ context.Context, message domain.ChatMessage) error {
	if !message.FromCustomer() {
		return nil
	}
	labels, lang := a.Analyze(message.Message)
	for _, label := range labels {
		a.metrics.Keywords.WithLabelValues(label).Inc()
	}
	a.metrics.Languages.WithLabelValues(lang).Inc()
	if len(labels) > 0 {
		a.log.Info("Customer message keywords", "user_id", message.Sender, "keywords", labels, "lang", lang)
	}
	return nil
}

// Analyze returns the topic labels of text and its ISO 639-1 language code.
func (a *AnalyticsSink) Analyze(text string) ([]string, string) {
	labels := a.topics.Labels(text)
	info := whatlanggo.Detect(text)
	lang := info.Lang.Iso6391()
	if lang == "" {
		lang = unknownLanguage
	}
	return labels, lang
}
