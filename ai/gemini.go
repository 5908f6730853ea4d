package ai

import (
	"context"
	"fmt"
	"log/slog"
	"shop-relay/errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	log     *slog.Logger
	timeout time.Duration
}

var _ TextGenerator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(ctx context.Context, log *slog.Logger, apiKey, modelName string, timeout time.Duration) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key", errors.ErrGenerationAuth)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, Classify(err)
	}
	return &GeminiGenerator{
		client:  client,
		model:   client.GenerativeModel(modelName),
		log:     log,
		timeout: timeout,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", Classify(err)
	}
	g.log.Debug("Gemini answered", "duration", time.Since(start))

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// First candidate with content wins
		if sb.Len() > 0 {
			break
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.ErrEmptyGeneration
	}
	return text, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
