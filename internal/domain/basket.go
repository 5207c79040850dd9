package domain

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals go over the wire as JSON numbers, never strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const basketTokenLen = 16

var (
	phonePattern    = regexp.MustCompile(`^[0-9]{10}$`)
	basketIDPattern = regexp.MustCompile(`^[0-9]{10}_[A-Za-z0-9]{10,20}$`)
)

// ValidPhone reports whether phone is exactly ten digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// PhoneFromBasketID extracts the owning phone from a basket id.
func PhoneFromBasketID(id string) (string, error) {
	if !basketIDPattern.MatchString(id) {
		return "", &ValidationError{Field: "id"}
	}
	return id[:strings.IndexByte(id, '_')], nil
}

// LineChoice is one priced, quantified selection within a basket item.
type LineChoice struct {
	ID          string          `json:"id"`
	Description string          `json:"desc"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewLineChoice builds a choice with a fresh id and its subtotal computed.
func NewLineChoice(desc string, unitPrice decimal.Decimal, quantity int) LineChoice {
	return LineChoice{
		ID:          uuid.NewString(),
		Description: desc,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// BasketItem is a named order item owning an ordered list of choices.
// TotalQuantity and TotalPrice are maintained by the collection mutators.
type BasketItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Choices       []LineChoice    `json:"choices"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (it *BasketItem) recompute() {
	qty := 0
	price := decimal.Zero
	for _, c := range it.Choices {
		qty += c.Quantity
		price = price.Add(c.Subtotal)
	}
	it.TotalQuantity = qty
	it.TotalPrice = price
}

// Collection is the keyed aggregate of items inside a basket. Totals always
// equal the sums over Items; every mutator recomputes them.
type Collection struct {
	Items         map[string]*BasketItem `json:"items"`
	TotalQuantity int                    `json:"totalQuantity"`
	TotalPrice    decimal.Decimal        `json:"totalPrice"`
}

// Size returns the item count.
func (c *Collection) Size() int {
	return len(c.Items)
}

// AddChoice appends choice to the named item, creating the item when absent.
// A choice with a non-positive quantity or negative price is ignored; the
// return value reports whether the collection changed.
func (c *Collection) AddChoice(itemID, itemName string, choice LineChoice) bool {
	if choice.Quantity <= 0 || choice.UnitPrice.IsNegative() {
		return false
	}
	if c.Items == nil {
		c.Items = make(map[string]*BasketItem)
	}
	it, ok := c.Items[itemID]
	if !ok {
		it = &BasketItem{ID: itemID, Name: itemName, TotalPrice: decimal.Zero}
		c.Items[itemID] = it
	}
	if choice.ID == "" {
		choice.ID = uuid.NewString()
	}
	choice.Subtotal = choice.UnitPrice.Mul(decimal.NewFromInt(int64(choice.Quantity)))
	it.Choices = append(it.Choices, choice)
	it.recompute()
	c.recompute()
	return true
}

// RemoveChoice deletes the named choice from the named item. An item left
// without choices is dropped from the collection. Returns the remaining item
// count so the caller can decide whether the whole basket should go.
func (c *Collection) RemoveChoice(itemID, choiceID string) (int, error) {
	it, ok := c.Items[itemID]
	if !ok {
		return len(c.Items), fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	idx := -1
	for i, ch := range it.Choices {
		if ch.ID == choiceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return len(c.Items), fmt.Errorf("choice %s: %w", choiceID, ErrNotFound)
	}
	it.Choices = append(it.Choices[:idx], it.Choices[idx+1:]...)
	if len(it.Choices) == 0 {
		delete(c.Items, itemID)
	} else {
		it.recompute()
	}
	c.recompute()
	return len(c.Items), nil
}

func (c *Collection) recompute() {
	qty := 0
	price := decimal.Zero
	for _, it := range c.Items {
		qty += it.TotalQuantity
		price = price.Add(it.TotalPrice)
	}
	c.TotalQuantity = qty
	c.TotalPrice = price
}

// ChoiceInput is one submitted choice within an update payload.
type ChoiceInput struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"desc"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// ItemInput is one submitted order-form section.
type ItemInput struct {
	ID      string        `json:"id,omitempty"`
	Name    string        `json:"name"`
	Choices []ChoiceInput `json:"choices"`
}

// MergeItem folds one submitted item into the collection and reports whether
// anything changed. Known choice ids are matched in place: quantity zero
// removes the choice, different fields replace it, identical fields are left
// alone. Unknown choices are appended through AddChoice.
func (c *Collection) MergeItem(in ItemInput) bool {
	changed := false
	itemID := in.ID
	if itemID == "" {
		itemID = uuid.NewString()
	}
	existing := c.Items[itemID]
	for _, ch := range in.Choices {
		var current *LineChoice
		if existing != nil && ch.ID != "" {
			for i := range existing.Choices {
				if existing.Choices[i].ID == ch.ID {
					current = &existing.Choices[i]
					break
				}
			}
		}
		switch {
		case current == nil:
			added := c.AddChoice(itemID, in.Name, LineChoice{
				ID:          ch.ID,
				Description: ch.Description,
				UnitPrice:   ch.UnitPrice,
				Quantity:    ch.Quantity,
			})
			if added {
				changed = true
				existing = c.Items[itemID]
			}
		case ch.Quantity <= 0:
			if _, err := c.RemoveChoice(itemID, current.ID); err == nil {
				changed = true
				existing = c.Items[itemID]
			}
		case current.Quantity != ch.Quantity ||
			!current.UnitPrice.Equal(ch.UnitPrice) ||
			current.Description != ch.Description:
			current.Description = ch.Description
			current.UnitPrice = ch.UnitPrice
			current.Quantity = ch.Quantity
			current.Subtotal = ch.UnitPrice.Mul(decimal.NewFromInt(int64(ch.Quantity)))
			existing.recompute()
			c.recompute()
			changed = true
		}
	}
	return changed
}

// Basket is one customer's in-progress order, keyed by phone plus a random
// token. The collection is embedded so records carry items and totals at the
// top level.
type Basket struct {
	ID           string     `json:"id"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	CheckedOutAt *time.Time `json:"checkedOutAt,omitempty"`
	Collection
}

// NewBasket builds an empty basket for the given customer with id
// "<phone>_<token>" and an expiry of now+ttl.
func NewBasket(phone, email string, ttl time.Duration) (*Basket, error) {
	if !ValidPhone(phone) {
		return nil, &ValidationError{Field: "phone"}
	}
	token, err := RandomToken(basketTokenLen)
	if err != nil {
		return nil, fmt.Errorf("generate basket id: %w", err)
	}
	now := time.Now().UTC()
	return &Basket{
		ID:        phone + "_" + token,
		Phone:     phone,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Collection: Collection{
			Items:      make(map[string]*BasketItem),
			TotalPrice: decimal.Zero,
		},
	}, nil
}

// Validate checks the basket in order: phone, then (unless skipID) id format
// and expiry window, then collection non-emptiness. The first failing field
// is reported.
func (b *Basket) Validate(skipID bool) error {
	if !ValidPhone(b.Phone) {
		return &ValidationError{Field: "phone"}
	}
	if !skipID {
		if !basketIDPattern.MatchString(b.ID) || !strings.HasPrefix(b.ID, b.Phone+"_") {
			return &ValidationError{Field: "id"}
		}
		if !b.ExpiresAt.After(time.Now()) {
			return &ValidationError{Field: "expiresAt"}
		}
	}
	if b.Size() == 0 {
		return &ValidationError{Field: "items"}
	}
	return nil
}

// BasketFromRecord rebuilds a basket from a stored record. Fields are copied
// through an explicit whitelist; unknown fields are ignored and malformed
// ones degrade to zero values rather than failing the whole load.
func BasketFromRecord(raw []byte) *Basket {
	b := &Basket{
		Collection: Collection{
			Items:      make(map[string]*BasketItem),
			TotalPrice: decimal.Zero,
		},
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return b
	}
	get := func(key string, dst interface{}) {
		if v, ok := fields[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	get("id", &b.ID)
	get("phone", &b.Phone)
	get("email", &b.Email)
	get("createdAt", &b.CreatedAt)
	get("expiresAt", &b.ExpiresAt)
	get("checkedOutAt", &b.CheckedOutAt)

	var items map[string]json.RawMessage
	get("items", &items)
	for id, rawItem := range items {
		var it BasketItem
		if err := json.Unmarshal(rawItem, &it); err != nil {
			continue
		}
		if it.ID == "" {
			it.ID = id
		}
		b.Items[id] = &it
	}
	b.Normalize()
	return b
}

// Normalize recomputes every derived field and silently drops choices with a
// non-positive quantity or negative price, and items left without choices.
func (b *Basket) Normalize() {
	for id, it := range b.Items {
		kept := make([]LineChoice, 0, len(it.Choices))
		for _, ch := range it.Choices {
			if ch.Quantity <= 0 || ch.UnitPrice.IsNegative() {
				continue
			}
			if ch.ID == "" {
				ch.ID = uuid.NewString()
			}
			ch.Subtotal = ch.UnitPrice.Mul(decimal.NewFromInt(int64(ch.Quantity)))
			kept = append(kept, ch)
		}
		if len(kept) == 0 {
			delete(b.Items, id)
			continue
		}
		it.Choices = kept
		it.recompute()
	}
	b.recompute()
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomToken returns n random alphanumeric characters.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, v := range buf {
		buf[i] = tokenAlphabet[int(v)%len(tokenAlphabet)]
	}
	return string(buf), nil
}
