package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pizzashack/internal/domain"
	"pizzashack/internal/store"
)

// Apply writes demo data for manual testing: one customer and, when absent,
// a sample menu file. It is idempotent.
func Apply(ctx context.Context, st *store.Store, menuPath string) error {
	if err := seedCustomer(ctx, st); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}
	if err := seedMenu(menuPath); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	return nil
}

func seedCustomer(ctx context.Context, st *store.Store) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	cust := domain.Customer{
		Phone:        "5551234567",
		FirstName:    "Demo",
		LastName:     "Customer",
		Email:        "demo@example.com",
		Address:      "1 Demo Street",
		PasswordHash: string(hashed),
		TOSAgreed:    true,
		CreatedAt:    time.Now().UTC(),
	}
	err = st.Create(ctx, "customer", cust.Phone, cust)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	return err
}

const sampleMenu = `{
  "groups": [
    {
      "name": "Pizza",
      "items": [
        {
          "name": "Classic",
          "choices": [
            {"desc": "margherita", "price": 9.50},
            {"desc": "pepperoni", "price": 12.50},
            {"desc": "quattro formaggi", "price": 13.00}
          ]
        },
        {
          "name": "Specialty",
          "choices": [
            {"desc": "diavola", "price": 14.00},
            {"desc": "capricciosa", "price": 14.50}
          ]
        }
      ]
    },
    {
      "name": "Drinks",
      "items": [
        {
          "name": "Soft drinks",
          "choices": [
            {"desc": "cola", "price": 2.50},
            {"desc": "lemonade", "price": 2.50}
          ]
        }
      ]
    }
  ]
}
`

func seedMenu(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(sampleMenu), 0o644)
}
