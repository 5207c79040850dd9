package domain

import "time"

// Customer is an account record keyed by phone number.
type Customer struct {
	Phone        string    `json:"phone"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"passwordHash"`
	TOSAgreed    bool      `json:"tosAgreement"`
	CreatedAt    time.Time `json:"createdAt"`
}
