package basket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pizzashack/internal/domain"
	basketrepo "pizzashack/internal/repository/basket"
)

// DefaultTTL is how long a basket stays active after creation.
const DefaultTTL = 2 * time.Hour

// Service drives the basket lifecycle: create, read, update, delete-choice,
// and checkout. Every mutation is gated on a valid session token for the
// owning phone.
type Service struct {
	repo      basketRepo
	customers customerReader
	tokens    tokenValidator
	payments  paymentGateway
	emails    emailGateway
	ttl       time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type basketRepo interface {
	Create(ctx context.Context, b *domain.Basket) error
	GetByID(ctx context.Context, id string) (*domain.Basket, error)
	Update(ctx context.Context, b *domain.Basket) error
	Delete(ctx context.Context, id string) error
}

type customerReader interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type tokenValidator interface {
	ValidateToken(ctx context.Context, tokenID, phone string) error
}

type paymentGateway interface {
	Process(ctx context.Context, amount decimal.Decimal, basketID string) error
}

type emailGateway interface {
	Send(ctx context.Context, basketID, recipient, message string) error
}

func New(repo basketrepo.Repository, customers customerReader, tokens tokenValidator, payments paymentGateway, emails emailGateway) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		tokens:    tokens,
		payments:  payments,
		emails:    emails,
		ttl:       DefaultTTL,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Create builds and persists an empty basket for the customer. Every step is
// a hard gate; no partial record is left behind on failure.
func (s *Service) Create(ctx context.Context, phone, tokenID string) (*domain.Basket, error) {
	if !domain.ValidPhone(phone) {
		return nil, &domain.ValidationError{Field: "phone"}
	}
	cust, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("lookup customer %s: %w", phone, err)
	}
	if err := s.tokens.ValidateToken(ctx, tokenID, phone); err != nil {
		return nil, err
	}
	b, err := domain.NewBasket(phone, cust.Email, s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("persist basket %s: %w", b.ID, err)
	}
	return b, nil
}

// Get loads a basket after validating the caller's token against the owning
// phone encoded in the basket id.
func (s *Service) Get(ctx context.Context, basketID, tokenID string) (*domain.Basket, error) {
	phone, err := domain.PhoneFromBasketID(basketID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.ValidateToken(ctx, tokenID, phone); err != nil {
		return nil, err
	}
	b, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("load basket %s: %w", basketID, err)
	}
	return b, nil
}

// Update merges submitted items into the basket. A payload producing no
// effective change is rejected with ErrNoChange and nothing is persisted.
func (s *Service) Update(ctx context.Context, basketID string, items []domain.ItemInput, tokenID string) (*domain.Basket, error) {
	phone, err := domain.PhoneFromBasketID(basketID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.ValidateToken(ctx, tokenID, phone); err != nil {
		return nil, err
	}
	unlock := s.lock(basketID)
	defer unlock()

	b, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("load basket %s: %w", basketID, err)
	}
	changed := false
	for _, in := range items {
		if b.MergeItem(in) {
			changed = true
		}
	}
	if !changed {
		return nil, domain.ErrNoChange
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("persist basket %s: %w", basketID, err)
	}
	return b, nil
}

// DeleteChoice removes one choice. When the collection ends up empty the
// whole basket record is deleted; otherwise the mutated basket is persisted.
// Returns the remaining item count either way.
func (s *Service) DeleteChoice(ctx context.Context, basketID, itemID, choiceID, tokenID string) (int, error) {
	phone, err := domain.PhoneFromBasketID(basketID)
	if err != nil {
		return 0, err
	}
	if err := s.tokens.ValidateToken(ctx, tokenID, phone); err != nil {
		return 0, err
	}
	unlock := s.lock(basketID)
	defer unlock()

	b, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return 0, fmt.Errorf("load basket %s: %w", basketID, err)
	}
	remaining, err := b.RemoveChoice(itemID, choiceID)
	if err != nil {
		return remaining, err
	}
	if remaining == 0 {
		if err := s.repo.Delete(ctx, basketID); err != nil {
			return 0, fmt.Errorf("delete basket %s: %w", basketID, err)
		}
		return 0, nil
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return remaining, fmt.Errorf("persist basket %s: %w", basketID, err)
	}
	return remaining, nil
}

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	BasketID string          `json:"basketId"`
	Total    decimal.Decimal `json:"total"`
	Message  string          `json:"message"`
}

// Checkout charges the basket total and sends the confirmation email, in
// that order; either failure aborts the operation and leaves the basket
// unchanged. A basket can only be checked out once.
func (s *Service) Checkout(ctx context.Context, basketID, tokenID string) (*CheckoutResult, error) {
	phone, err := domain.PhoneFromBasketID(basketID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.ValidateToken(ctx, tokenID, phone); err != nil {
		return nil, err
	}
	unlock := s.lock(basketID)
	defer unlock()

	b, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("load basket %s: %w", basketID, err)
	}
	if b.CheckedOutAt != nil {
		return nil, domain.ErrCheckedOut
	}
	if err := b.Validate(false); err != nil {
		return nil, err
	}
	total := b.TotalPrice
	if err := s.payments.Process(ctx, total, basketID); err != nil {
		return nil, fmt.Errorf("charge basket %s: %w", basketID, err)
	}
	message := fmt.Sprintf("Your order %s for $%s has been received and is being prepared.", basketID, total.StringFixed(2))
	if err := s.emails.Send(ctx, basketID, b.Email, message); err != nil {
		return nil, fmt.Errorf("notify %s: %w", b.Email, err)
	}
	now := time.Now().UTC()
	b.CheckedOutAt = &now
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("persist basket %s: %w", basketID, err)
	}
	return &CheckoutResult{BasketID: basketID, Total: total, Message: message}, nil
}

// lock serialises mutations on one basket id. The flat-file store has no
// transactions, so concurrent writers would otherwise race last-writer-wins.
func (s *Service) lock(basketID string) func() {
	s.mu.Lock()
	l, ok := s.locks[basketID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[basketID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
