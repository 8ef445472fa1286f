package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a single ledger account. The balance is a fixed-point decimal
// stored with two fractional digits; shopspring/decimal serializes it as a
// quoted string, which is the wire format the API exposes.
type Account struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// MaxNameLength bounds the display name, mirroring the VARCHAR(100) column.
const MaxNameLength = 100
