package customer

import (
	"context"
	"errors"
	"time"

	"pizzashack/internal/domain"
	tokenrepo "pizzashack/internal/repository/token"
)

const tokenIDLen = 20

type tokenManager struct {
	repo tokenrepo.Repository
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo}
}

func (m *tokenManager) Issue(ctx context.Context, phone string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	for i := 0; i < 5; i++ {
		id, err := domain.RandomToken(tokenIDLen)
		if err != nil {
			return "", time.Time{}, err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			ID:        id,
			Phone:     phone,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		})
		if err == nil {
			return id, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errors.New("token collision")
}

// Validate treats any failure (missing record, wrong phone, expiry, store
// I/O) as an authorization failure.
func (m *tokenManager) Validate(ctx context.Context, id, phone string) error {
	if id == "" {
		return domain.ErrUnauthorized
	}
	tok, err := m.repo.Get(ctx, id)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if tok.Phone != phone {
		return domain.ErrUnauthorized
	}
	if time.Now().After(tok.ExpiresAt) {
		_ = m.repo.Delete(ctx, id)
		return domain.ErrUnauthorized
	}
	return nil
}

func (m *tokenManager) Extend(ctx context.Context, id string, ttl time.Duration) (time.Time, error) {
	tok, err := m.repo.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	if time.Now().After(tok.ExpiresAt) {
		return time.Time{}, domain.ErrUnauthorized
	}
	tok.ExpiresAt = time.Now().UTC().Add(ttl)
	if err := m.repo.Update(ctx, *tok); err != nil {
		return time.Time{}, err
	}
	return tok.ExpiresAt, nil
}

func (m *tokenManager) Revoke(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}
