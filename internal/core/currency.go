package core

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount for user-facing advice text.
// Amounts are tracked in INR, the ledger's display currency.
func FormatCurrency(amount decimal.Decimal) string {
	minor := amount.Shift(2).Round(0).IntPart()
	return money.New(minor, money.INR).Display()
}
