package core

import "github.com/shopspring/decimal"

// AdviceData is the point-in-time input for the advice generator.
// Income and Expenses are monthly figures. A nil or empty snapshot is a
// valid input; the generator answers it with its starter tips.
type AdviceData struct {
	Transactions []Transaction   `json:"transactions"`
	Investments  []Investment    `json:"investments"`
	Goals        []Goal          `json:"goals"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
}

// FinancialSnapshot is the richer input consumed by the optimization
// suggestion engine: scalar metrics plus current-month transactions,
// budgets with derived spent, and investments.
type FinancialSnapshot struct {
	Summary              Summary          `json:"summary"`
	TotalInvestmentValue decimal.Decimal  `json:"totalInvestmentValue"`
	Budgets              []BudgetCategory `json:"budgets"`
	MonthlyTransactions  []Transaction    `json:"transactions"`
	Investments          []Investment     `json:"investments"`
}
