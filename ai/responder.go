//go:generate go run go.uber.org/mock/mockgen -source=responder.go -destination=../mocks/mock_responder.go -package=mocks
package ai

import (
	"context"
	"shop-relay/domain"
)

// IResponder produces the bot answer to a customer message.
type IResponder interface {
	Reply(ctx context.Context, userMessage string, history []domain.ChatMessage) (string, error)
}

type Responder struct {
	generator TextGenerator
	products  *ProductContext
}

var _ IResponder = Responder{}

func NewResponder(generator TextGenerator, products *ProductContext) Responder {
	return Responder{generator: generator, products: products}
}

// Reply grounds the prompt on the product catalog and the latest turns of history.
func (r Responder) Reply(ctx context.Context, userMessage string, history []domain.ChatMessage) (string, error) {
	productContext := "\n" + ProductsUnavailable + "\n"
	if r.products != nil {
		productContext = r.products.Get(ctx)
	}
	return r.generator.Generate(ctx, BuildPrompt(productContext, history, userMessage))
}
