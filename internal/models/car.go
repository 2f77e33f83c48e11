// internal/models/car.go
package models

import "github.com/shopspring/decimal"

type Car struct {
	ID        int64           `json:"id"`
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	ModelYear int             `json:"modelYear"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
}
