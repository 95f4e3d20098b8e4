package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the scalar metrics derived from the transaction ledger.
// It is recomputed on demand, never stored.
type Summary struct {
	TotalBalance    decimal.Decimal `json:"totalBalance"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	SavingsRate     float64         `json:"savingsRate"`
}

// Summarize derives the summary metrics from a transaction set. Monthly
// figures cover the calendar month containing now; the balance is all-time.
func Summarize(transactions []Transaction, now time.Time) Summary {
	var totalIncome, totalExpenses, monthIncome, monthExpenses decimal.Decimal

	for _, t := range transactions {
		inMonth := t.Date.SameMonth(now)
		switch t.Type {
		case Income:
			totalIncome = totalIncome.Add(t.Amount)
			if inMonth {
				monthIncome = monthIncome.Add(t.Amount)
			}
		case Expense:
			totalExpenses = totalExpenses.Add(t.Amount)
			if inMonth {
				monthExpenses = monthExpenses.Add(t.Amount)
			}
		}
	}

	return Summary{
		TotalBalance:    totalIncome.Sub(totalExpenses),
		MonthlyIncome:   monthIncome,
		MonthlyExpenses: monthExpenses,
		SavingsRate:     SavingsRate(monthIncome, monthExpenses),
	}
}

// SavingsRate returns (income-expenses)/income as a percentage. Zero income
// yields 0 by definition; a negative rate (expenses above income) is valid.
func SavingsRate(income, expenses decimal.Decimal) float64 {
	if income.IsZero() {
		return 0
	}
	rate, _ := income.Sub(expenses).Div(income).Mul(decimal.NewFromInt(100)).Float64()
	return rate
}

// SpentByCategory sums expense transactions whose category matches name.
func SpentByCategory(transactions []Transaction, name string) decimal.Decimal {
	var spent decimal.Decimal
	for _, t := range transactions {
		if t.Type == Expense && t.Category == name {
			spent = spent.Add(t.Amount)
		}
	}
	return spent
}

// MonthTransactions filters transactions to the calendar month of now.
func MonthTransactions(transactions []Transaction, now time.Time) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if t.Date.SameMonth(now) {
			out = append(out, t)
		}
	}
	return out
}
