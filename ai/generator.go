//go:generate go run go.uber.org/mock/mockgen -source=generator.go -destination=../mocks/mock_generator.go -package=mocks
package ai

import (
	"context"
	"shop-relay/errors"
)

// TextGenerator turns a prompt into generated text.
// Errors are classified as ErrGenerationAuth, ErrGenerationQuota or ErrGeneration.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DisabledGenerator is used when no API key is configured.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.ErrGeneratorDisabled
}
