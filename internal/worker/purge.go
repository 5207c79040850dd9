package worker

import (
	"context"
	"log"
	"time"

	"pizzashack/internal/domain"
	tokenrepo "pizzashack/internal/repository/token"
)

// Purger sweeps expired token and basket records on a fixed interval. A
// failure on one record never stops the sweep.
type Purger struct {
	tokens   tokenRepo
	baskets  basketRepo
	interval time.Duration
	logger   *log.Logger
}

type tokenRepo interface {
	Get(ctx context.Context, id string) (*tokenrepo.Token, error)
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

type basketRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Basket, error)
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

func NewPurger(tokens tokenRepo, baskets basketRepo, interval time.Duration, logger *log.Logger) *Purger {
	return &Purger{tokens: tokens, baskets: baskets, interval: interval, logger: logger}
}

// Run sweeps until ctx is cancelled.
func (p *Purger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purgeTokens(ctx)
			p.purgeBaskets(ctx)
		}
	}
}

func (p *Purger) purgeTokens(ctx context.Context) {
	ids, err := p.tokens.ListIDs(ctx)
	if err != nil {
		p.logger.Printf("purge: list tokens: %v", err)
		return
	}
	now := time.Now()
	for _, id := range ids {
		tok, err := p.tokens.Get(ctx, id)
		if err != nil {
			p.logger.Printf("purge: read token %s: %v", id, err)
			continue
		}
		if now.After(tok.ExpiresAt) {
			if err := p.tokens.Delete(ctx, id); err != nil {
				p.logger.Printf("purge: delete token %s: %v", id, err)
			}
		}
	}
}

func (p *Purger) purgeBaskets(ctx context.Context) {
	ids, err := p.baskets.ListIDs(ctx)
	if err != nil {
		p.logger.Printf("purge: list baskets: %v", err)
		return
	}
	now := time.Now()
	for _, id := range ids {
		b, err := p.baskets.GetByID(ctx, id)
		if err != nil {
			p.logger.Printf("purge: read basket %s: %v", id, err)
			continue
		}
		if now.After(b.ExpiresAt) {
			if err := p.baskets.Delete(ctx, id); err != nil {
				p.logger.Printf("purge: delete basket %s: %v", id, err)
			}
		}
	}
}
