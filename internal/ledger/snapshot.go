package ledger

import (
	"github.com/shopspring/decimal"

	"wealthtrack/internal/core"
)

// Transactions returns a copy of the transaction collection,
// most recent insertion first.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Transaction(nil), l.transactions...)
}

// Budgets returns a copy of the budget collection.
func (l *Ledger) Budgets() []core.BudgetCategory {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.BudgetCategory(nil), l.budgets...)
}

// Investments returns a copy of the investment collection.
func (l *Ledger) Investments() []core.Investment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Investment(nil), l.investments...)
}

// Suggestions returns a copy of the optimization suggestion collection.
func (l *Ledger) Suggestions() []core.OptimizationSuggestion {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.OptimizationSuggestion(nil), l.suggestions...)
}

// Summary derives the scalar metrics for the current calendar month.
func (l *Ledger) Summary() core.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.Summarize(l.transactions, l.now())
}

// Snapshot builds the point-in-time input for the optimization engine:
// summary metrics, budgets with derived spent, the current month's
// transactions and the investment holdings.
func (l *Ledger) Snapshot() core.FinancialSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var totalValue decimal.Decimal
	for _, inv := range l.investments {
		totalValue = totalValue.Add(inv.CurrentValue())
	}

	return core.FinancialSnapshot{
		Summary:              core.Summarize(l.transactions, now),
		TotalInvestmentValue: totalValue,
		Budgets:              append([]core.BudgetCategory(nil), l.budgets...),
		MonthlyTransactions:  core.MonthTransactions(l.transactions, now),
		Investments:          append([]core.Investment(nil), l.investments...),
	}
}

// AdviceData builds the advisor's snapshot: the current month's
// transactions with monthly income and expense totals.
func (l *Ledger) AdviceData() core.AdviceData {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	summary := core.Summarize(l.transactions, now)
	return core.AdviceData{
		Transactions: core.MonthTransactions(l.transactions, now),
		Investments:  append([]core.Investment(nil), l.investments...),
		Income:       summary.MonthlyIncome,
		Expenses:     summary.MonthlyExpenses,
	}
}
