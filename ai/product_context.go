package ai

import (
	"context"
	"log/slog"
	"shop-relay/repositories"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const ProductContextTTL = 10 * time.Minute

// ProductContext caches the catalog block of the prompt.
// Concurrent refreshes share a single catalog query.
type ProductContext struct {
	repository repositories.IProductRepository
	log        *slog.Logger
	ttl        time.Duration
	now        func() time.Time
	group      singleflight.Group

	mu        sync.RWMutex
	cached    string
	fetchedAt time.Time
}

func NewProductContext(repository repositories.IProductRepository, log *slog.Logger, ttl time.Duration) *ProductContext {
	return &ProductContext{repository: repository, log: log, ttl: ttl, now: time.Now}
}

// Get returns the cached block, refreshing it when older than ttl.
// A catalog failure yields a placeholder and is not cached.
func (p *ProductContext) Get(ctx context.Context) string {
	p.mu.RLock()
	cached, fetchedAt := p.cached, p.fetchedAt
	p.mu.RUnlock()
	if cached != "" && p.now().Sub(fetchedAt) < p.ttl {
		return cached
	}

	value, err, _ := p.group.Do("products", func() (any, error) {
		return p.load(ctx)
	})
	if err != nil {
		p.log.Warn("Unable to load products for the bot prompt", "error", err)
		return "\n" + ProductsUnavailable + "\n"
	}
	return value.(string)
}

func (p *ProductContext) load(ctx context.Context) (string, error) {
	bestsellers, err := p.repository.Bestsellers(ctx, repositories.ContextProductLimit)
	if err != nil {
		return "", err
	}
	others, err := p.repository.Others(ctx, repositories.ContextProductLimit)
	if err != nil {
		return "", err
	}

	block := FormatProducts(append(bestsellers, others...))
	p.mu.Lock()
	p.cached = block
	p.fetchedAt = p.now()
	p.mu.Unlock()
	return block, nil
}
