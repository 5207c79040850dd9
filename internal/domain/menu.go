package domain

import "github.com/shopspring/decimal"

// Menu is the static order form: groups of items, each with priced choices.
type Menu struct {
	Groups []MenuGroup `json:"groups"`
}

type MenuGroup struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type MenuItem struct {
	Name    string       `json:"name"`
	Choices []MenuChoice `json:"choices"`
}

type MenuChoice struct {
	Description string          `json:"desc"`
	Price       decimal.Decimal `json:"price"`
}
