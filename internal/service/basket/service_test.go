package basket

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pizzashack/internal/domain"
)

type stubRepo struct {
	created    *domain.Basket
	createErr  error
	getResult  *domain.Basket
	getErr     error
	updated    *domain.Basket
	updateErr  error
	deletedID  string
	deleteErr  error
	createCall int
	updateCall int
	deleteCall int
}

func (s *stubRepo) Create(_ context.Context, b *domain.Basket) error {
	s.createCall++
	s.created = b
	return s.createErr
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Basket, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResult, nil
}

func (s *stubRepo) Update(_ context.Context, b *domain.Basket) error {
	s.updateCall++
	s.updated = b
	return s.updateErr
}

func (s *stubRepo) Delete(_ context.Context, id string) error {
	s.deleteCall++
	s.deletedID = id
	return s.deleteErr
}

type stubCustomers struct {
	customer *domain.Customer
	err      error
}

func (s *stubCustomers) GetByPhone(_ context.Context, _ string) (*domain.Customer, error) {
	return s.customer, s.err
}

type stubTokens struct {
	err       error
	lastToken string
	lastPhone string
}

func (s *stubTokens) ValidateToken(_ context.Context, tokenID, phone string) error {
	s.lastToken = tokenID
	s.lastPhone = phone
	return s.err
}

type stubPayment struct {
	err        error
	calls      int
	lastAmount decimal.Decimal
	lastBasket string
}

func (s *stubPayment) Process(_ context.Context, amount decimal.Decimal, basketID string) error {
	s.calls++
	s.lastAmount = amount
	s.lastBasket = basketID
	return s.err
}

type stubEmail struct {
	err           error
	calls         int
	lastBasket    string
	lastRecipient string
	lastMessage   string
}

func (s *stubEmail) Send(_ context.Context, basketID, recipient, message string) error {
	s.calls++
	s.lastBasket = basketID
	s.lastRecipient = recipient
	s.lastMessage = message
	return s.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newService(repo *stubRepo, customers *stubCustomers, tokens *stubTokens, payments *stubPayment, emails *stubEmail) *Service {
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

func activeBasket(t *testing.T) *domain.Basket {
	t.Helper()
	b, err := domain.NewBasket("5551234567", "c@x.com", 2*time.Hour)
	if err != nil {
		t.Fatalf("new basket: %v", err)
	}
	return b
}

func TestCreateHappyPath(t *testing.T) {
	repo := &stubRepo{}
	tokens := &stubTokens{}
	svc := newService(repo, &stubCustomers{customer: &domain.Customer{Phone: "5551234567", Email: "c@x.com"}}, tokens, &stubPayment{}, &stubEmail{})

	b, err := svc.Create(context.Background(), "5551234567", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^5551234567_[A-Za-z0-9]{10,20}$`).MatchString(b.ID) {
		t.Fatalf("unexpected basket id %q", b.ID)
	}
	if b.TotalQuantity != 0 {
		t.Fatalf("new basket quantity %d, want 0", b.TotalQuantity)
	}
	if b.Email != "c@x.com" {
		t.Fatalf("customer email not copied: %q", b.Email)
	}
	if repo.created != b {
		t.Fatal("basket not persisted")
	}
	if tokens.lastPhone != "5551234567" {
		t.Fatalf("token validated against %q", tokens.lastPhone)
	}
}

func TestCreateRejectsBadPhone(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})
	var ve *domain.ValidationError
	_, err := svc.Create(context.Background(), "555", "tok")
	if !errors.As(err, &ve) || ve.Field != "phone" {
		t.Fatalf("expected phone validation error, got %v", err)
	}
	if repo.createCall != 0 {
		t.Fatal("basket persisted despite validation failure")
	}
}

func TestCreateUnknownCustomer(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, &stubCustomers{err: domain.ErrNotFound}, &stubTokens{}, &stubPayment{}, &stubEmail{})
	_, err := svc.Create(context.Background(), "5551234567", "tok")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.createCall != 0 {
		t.Fatal("basket persisted for unknown customer")
	}
}

func TestCreateInvalidToken(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, &stubCustomers{customer: &domain.Customer{Email: "c@x.com"}}, &stubTokens{err: domain.ErrUnauthorized}, &stubPayment{}, &stubEmail{})
	_, err := svc.Create(context.Background(), "5551234567", "bad")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if repo.createCall != 0 {
		t.Fatal("basket persisted despite invalid token")
	}
}

func TestGetValidatesTokenAgainstOwner(t *testing.T) {
	b := activeBasket(t)
	tokens := &stubTokens{}
	svc := newService(&stubRepo{getResult: b}, &stubCustomers{}, tokens, &stubPayment{}, &stubEmail{})

	got, err := svc.Get(context.Background(), b.ID, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != b {
		t.Fatalf("unexpected basket: %+v", got)
	}
	if tokens.lastPhone != "5551234567" {
		t.Fatalf("token validated against %q", tokens.lastPhone)
	}
}

func TestGetMalformedID(t *testing.T) {
	svc := newService(&stubRepo{}, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})
	var ve *domain.ValidationError
	_, err := svc.Get(context.Background(), "garbage", "tok")
	if !errors.As(err, &ve) || ve.Field != "id" {
		t.Fatalf("expected id validation error, got %v", err)
	}
}

func TestUpdateMissingBasket(t *testing.T) {
	repo := &stubRepo{getErr: domain.ErrNotFound}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})
	items := []domain.ItemInput{{Name: "Pizza", Choices: []domain.ChoiceInput{{Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2}}}}
	_, err := svc.Update(context.Background(), "5551234567_AbCdEf1234", items, "tok")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.createCall != 0 || repo.updateCall != 0 {
		t.Fatal("update of missing basket persisted something")
	}
}

func TestUpdateNoOpRejected(t *testing.T) {
	b := activeBasket(t)
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	repo := &stubRepo{getResult: b}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})

	// Identical payload: nothing changes, nothing is persisted.
	items := []domain.ItemInput{{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}}}
	_, err := svc.Update(context.Background(), b.ID, items, "tok")
	if !errors.Is(err, domain.ErrNoChange) {
		t.Fatalf("expected no-change conflict, got %v", err)
	}
	if repo.updateCall != 0 {
		t.Fatal("no-op update persisted")
	}

	_, err = svc.Update(context.Background(), b.ID, nil, "tok")
	if !errors.Is(err, domain.ErrNoChange) {
		t.Fatalf("expected no-change conflict for empty payload, got %v", err)
	}
}

func TestUpdateMergesAndPersists(t *testing.T) {
	b := activeBasket(t)
	repo := &stubRepo{getResult: b}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})

	items := []domain.ItemInput{{Name: "Pizza", Choices: []domain.ChoiceInput{
		{Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}}}
	got, err := svc.Update(context.Background(), b.ID, items, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updated != got {
		t.Fatal("merged basket not persisted")
	}
	if !got.TotalPrice.Equal(dec("25.00")) || got.TotalQuantity != 2 {
		t.Fatalf("totals %s/%d, want 25.00/2", got.TotalPrice, got.TotalQuantity)
	}
}

func TestDeleteChoiceLastChoiceDeletesBasket(t *testing.T) {
	b := activeBasket(t)
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	repo := &stubRepo{getResult: b}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})

	remaining, err := svc.DeleteChoice(context.Background(), b.ID, "item1", "ch1", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining %d, want 0", remaining)
	}
	if repo.deleteCall != 1 || repo.deletedID != b.ID {
		t.Fatal("basket record not deleted when collection emptied")
	}
	if repo.updateCall != 0 {
		t.Fatal("empty basket persisted instead of deleted")
	}
}

func TestDeleteChoicePersistsWhenItemsRemain(t *testing.T) {
	b := activeBasket(t)
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	b.MergeItem(domain.ItemInput{ID: "item2", Name: "Drinks", Choices: []domain.ChoiceInput{
		{ID: "ch2", Description: "cola", UnitPrice: dec("2.50"), Quantity: 1},
	}})
	repo := &stubRepo{getResult: b}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, &stubEmail{})

	remaining, err := svc.DeleteChoice(context.Background(), b.ID, "item1", "ch1", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining %d, want 1", remaining)
	}
	if repo.updateCall != 1 || repo.deleteCall != 0 {
		t.Fatal("expected persist, not delete")
	}
}

func TestCheckoutPaymentFailureAborts(t *testing.T) {
	b := activeBasket(t)
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	repo := &stubRepo{getResult: b}
	payments := &stubPayment{err: &domain.UpstreamError{Gateway: "payment", Status: 402}}
	emails := &stubEmail{}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, payments, emails)

	_, err := svc.Checkout(context.Background(), b.ID, "tok")
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) || ue.Gateway != "payment" || ue.Status != 402 {
		t.Fatalf("expected payment upstream error, got %v", err)
	}
	if emails.calls != 0 {
		t.Fatal("email sent despite payment failure")
	}
	if repo.updateCall != 0 || repo.deleteCall != 0 {
		t.Fatal("basket touched despite payment failure")
	}
	if b.CheckedOutAt != nil {
		t.Fatal("basket marked checked out despite payment failure")
	}
}

func TestCheckoutEmailFailureAborts(t *testing.T) {
	b := activeBasket(t)
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	repo := &stubRepo{getResult: b}
	emails := &stubEmail{err: &domain.UpstreamError{Gateway: "email", Status: 500}}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, &stubPayment{}, emails)

	_, err := svc.Checkout(context.Background(), b.ID, "tok")
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) || ue.Gateway != "email" {
		t.Fatalf("expected email upstream error, got %v", err)
	}
	if repo.updateCall != 0 {
		t.Fatal("basket persisted despite email failure")
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	b := activeBasket(t)
	b.Email = "c@x.com"
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	repo := &stubRepo{getResult: b}
	payments := &stubPayment{}
	emails := &stubEmail{}
	svc := newService(repo, &stubCustomers{}, &stubTokens{}, payments, emails)

	res, err := svc.Checkout(context.Background(), b.ID, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BasketID != b.ID || !res.Total.Equal(dec("25.00")) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if payments.calls != 1 || !payments.lastAmount.Equal(dec("25.00")) || payments.lastBasket != b.ID {
		t.Fatalf("payment called wrong: %+v", payments)
	}
	if emails.calls != 1 || emails.lastRecipient != "c@x.com" {
		t.Fatalf("email called wrong: %+v", emails)
	}
	if b.CheckedOutAt == nil {
		t.Fatal("basket not stamped checked out")
	}
	if repo.updateCall != 1 {
		t.Fatal("checked-out basket not persisted")
	}
}

func TestCheckoutTwiceRejected(t *testing.T) {
	b := activeBasket(t)
	b.MergeItem(domain.ItemInput{ID: "item1", Name: "Pizza", Choices: []domain.ChoiceInput{
		{ID: "ch1", Description: "pepperoni", UnitPrice: dec("12.50"), Quantity: 2},
	}})
	now := time.Now().UTC()
	b.CheckedOutAt = &now
	payments := &stubPayment{}
	svc := newService(&stubRepo{getResult: b}, &stubCustomers{}, &stubTokens{}, payments, &stubEmail{})

	_, err := svc.Checkout(context.Background(), b.ID, "tok")
	if !errors.Is(err, domain.ErrCheckedOut) {
		t.Fatalf("expected checked-out conflict, got %v", err)
	}
	if payments.calls != 0 {
		t.Fatal("payment attempted on checked-out basket")
	}
}

func TestCheckoutEmptyBasketRejected(t *testing.T) {
	b := activeBasket(t)
	payments := &stubPayment{}
	svc := newService(&stubRepo{getResult: b}, &stubCustomers{}, &stubTokens{}, payments, &stubEmail{})

	var ve *domain.ValidationError
	_, err := svc.Checkout(context.Background(), b.ID, "tok")
	if !errors.As(err, &ve) || ve.Field != "items" {
		t.Fatalf("expected items validation error, got %v", err)
	}
	if payments.calls != 0 {
		t.Fatal("payment attempted for empty basket")
	}
}
