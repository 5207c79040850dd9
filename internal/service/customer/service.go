package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pizzashack/internal/domain"
	custrepo "pizzashack/internal/repository/customer"
	tokenrepo "pizzashack/internal/repository/token"
)

// ErrInvalidCredentials is returned when phone/password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles customer accounts and session tokens.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	tokenTTL    time.Duration
	passwordMin int
}

// New creates a Service. A non-positive tokenTTL falls back to one hour.
func New(repo custrepo.Repository, tokens tokenrepo.Repository, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		tokenTTL:    tokenTTL,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Phone     string `json:"phone"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Password  string `json:"password"`
	TOSAgreed bool   `json:"tosAgreement"`
}

// Signup registers a new customer keyed by phone.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Customer, error) {
	phone := strings.TrimSpace(in.Phone)
	if !domain.ValidPhone(phone) {
		return nil, &domain.ValidationError{Field: "phone"}
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, &domain.ValidationError{Field: "email"}
	}
	if !in.TOSAgreed {
		return nil, &domain.ValidationError{Field: "tosAgreement"}
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, &domain.ValidationError{Field: "password"}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	cust := domain.Customer{
		Phone:        phone,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: string(hashed),
		TOSAgreed:    true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, cust); err != nil {
		return nil, fmt.Errorf("create customer %s: %w", phone, err)
	}
	return &cust, nil
}

// Get returns the customer's own record, token-gated.
func (s *Service) Get(ctx context.Context, phone, tokenID string) (*domain.Customer, error) {
	if err := s.tokens.Validate(ctx, tokenID, phone); err != nil {
		return nil, err
	}
	return s.repo.GetByPhone(ctx, phone)
}

// UpdateInput carries optional account changes; empty fields are unchanged.
type UpdateInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Password  string `json:"password"`
}

// Update applies the non-empty fields to the customer's record.
func (s *Service) Update(ctx context.Context, phone, tokenID string, in UpdateInput) (*domain.Customer, error) {
	if err := s.tokens.Validate(ctx, tokenID, phone); err != nil {
		return nil, err
	}
	cust, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(in.FirstName); v != "" {
		cust.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		cust.LastName = v
	}
	if v := strings.TrimSpace(strings.ToLower(in.Email)); v != "" {
		cust.Email = v
	}
	if v := strings.TrimSpace(in.Address); v != "" {
		cust.Address = v
	}
	if v := strings.TrimSpace(in.Password); v != "" {
		if len(v) < s.passwordMin {
			return nil, &domain.ValidationError{Field: "password"}
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cust.PasswordHash = string(hashed)
	}
	if err := s.repo.Update(ctx, *cust); err != nil {
		return nil, fmt.Errorf("update customer %s: %w", phone, err)
	}
	return cust, nil
}

// Delete removes the customer's own record.
func (s *Service) Delete(ctx context.Context, phone, tokenID string) error {
	if err := s.tokens.Validate(ctx, tokenID, phone); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, phone); err != nil {
		return fmt.Errorf("delete customer %s: %w", phone, err)
	}
	return nil
}

// Login validates credentials and issues a session token.
func (s *Service) Login(ctx context.Context, phone, password string) (string, time.Time, error) {
	cust, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cust.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(ctx, phone, s.tokenTTL)
}

// Logout revokes the session token.
func (s *Service) Logout(ctx context.Context, tokenID string) error {
	return s.tokens.Revoke(ctx, tokenID)
}

// Extend pushes a live token's expiry forward by one TTL.
func (s *Service) Extend(ctx context.Context, tokenID string) (time.Time, error) {
	return s.tokens.Extend(ctx, tokenID, s.tokenTTL)
}

// ValidateToken reports whether the token is live and bound to the phone.
// Any failure reads as an authorization failure.
func (s *Service) ValidateToken(ctx context.Context, tokenID, phone string) error {
	return s.tokens.Validate(ctx, tokenID, phone)
}
