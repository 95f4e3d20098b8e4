// Package advisor is the stateless tip engine: it turns a financial-data
// snapshot into a short list of human-readable suggestions. It holds no
// state and raises no errors; malformed or empty input degrades to the
// starter tips.
package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"wealthtrack/internal/core"
)

// Tips returned verbatim when the snapshot has no transactions.
var starterTips = []string{
	"Start tracking your expenses to get personalized advice",
	"Set up a budget to better manage your finances",
	"Consider setting up automatic savings",
	"Review your recurring subscriptions",
	"Create an emergency fund",
}

// Generic tips appended when the rules produce fewer than five candidates.
var fallbackTips = []string{
	"Review your investment portfolio regularly",
	"Consider automating your savings",
	"Set up financial goals for the next 6 months",
	"Track your net worth monthly",
	"Review your insurance coverage",
}

// Thresholds for the spending rules.
var (
	highSpendingPercent   = 15.0
	smallTransactionLimit = decimal.NewFromInt(500)
	smallTransactionCount = 15
	recurringTotalLimit   = decimal.NewFromInt(1000)
	targetSavingsRate     = 20.0
)

// StarterTips returns the fixed starter tip list.
func StarterTips() []string {
	return append([]string(nil), starterTips...)
}

// Advise produces at most five tips from the snapshot, in rule-priority
// order. A nil snapshot or one without transactions yields the starter tips
// verbatim. When area is non-empty the full candidate pool is filtered to
// tips containing area (case-insensitive) instead of being truncated.
func Advise(data *core.AdviceData, area string) []string {
	if data == nil || len(data.Transactions) == 0 {
		return StarterTips()
	}

	var tips []string

	for _, cat := range highSpendingCategories(data.Transactions, data.Income) {
		tips = append(tips, fmt.Sprintf(
			"Consider reducing spending in %s category. It's taking up %d%% of your income.",
			cat.name, int(math.Round(cat.percentOfIncome))))
	}

	if hasFrequentSmallTransactions(data.Transactions) {
		tips = append(tips, "You have many small transactions. Consider consolidating these purchases to better track your spending.")
	}

	for _, exp := range recurringExpenses(data.Transactions) {
		tips = append(tips, fmt.Sprintf(
			"Review your recurring expense: %s. You've spent %s on this in the last month.",
			exp.name, core.FormatCurrency(exp.total)))
	}

	rate := core.SavingsRate(data.Income, data.Expenses)
	if rate < targetSavingsRate {
		tips = append(tips, fmt.Sprintf(
			"Your savings rate is %d%%. Consider increasing it to at least 20%% for better financial health.",
			int(math.Round(rate))))
	}

	if len(tips) < 5 {
		tips = append(tips, fallbackTips...)
	}

	if area != "" {
		return filterTips(tips, area)
	}
	if len(tips) > 5 {
		tips = tips[:5]
	}
	return tips
}

// categoryTotal keeps first-seen order so the emitted tips are stable.
type categoryTotal struct {
	name            string
	total           decimal.Decimal
	percentOfIncome float64
}

// highSpendingCategories flags expense categories above 15% of income.
// With zero income the percentage is undefined, so the rule is skipped
// entirely rather than computed against a zero denominator.
func highSpendingCategories(transactions []core.Transaction, income decimal.Decimal) []categoryTotal {
	if income.IsZero() {
		return nil
	}

	totals := groupExpenses(transactions, func(t core.Transaction) string { return t.Category })

	var flagged []categoryTotal
	for _, ct := range totals {
		pct, _ := ct.total.Div(income).Mul(decimal.NewFromInt(100)).Float64()
		if pct > highSpendingPercent {
			ct.percentOfIncome = pct
			flagged = append(flagged, ct)
		}
	}
	return flagged
}

func hasFrequentSmallTransactions(transactions []core.Transaction) bool {
	count := 0
	for _, t := range transactions {
		if t.Type == core.Expense && t.Amount.LessThan(smallTransactionLimit) {
			count++
		}
	}
	return count > smallTransactionCount
}

// recurringExpenses groups expenses by exact description and flags
// descriptions whose total exceeds the recurring threshold.
func recurringExpenses(transactions []core.Transaction) []categoryTotal {
	totals := groupExpenses(transactions, func(t core.Transaction) string { return t.Description })

	var flagged []categoryTotal
	for _, ct := range totals {
		if ct.total.GreaterThan(recurringTotalLimit) {
			flagged = append(flagged, ct)
		}
	}
	return flagged
}

// groupExpenses sums expense amounts per key, preserving first-seen order.
func groupExpenses(transactions []core.Transaction, keyOf func(core.Transaction) string) []categoryTotal {
	index := make(map[string]int)
	var totals []categoryTotal
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		key := keyOf(t)
		if i, ok := index[key]; ok {
			totals[i].total = totals[i].total.Add(t.Amount)
			continue
		}
		index[key] = len(totals)
		totals = append(totals, categoryTotal{name: key, total: t.Amount})
	}
	return totals
}

func filterTips(tips []string, area string) []string {
	needle := strings.ToLower(area)
	var out []string
	for _, tip := range tips {
		if strings.Contains(strings.ToLower(tip), needle) {
			out = append(out, tip)
		}
	}
	return out
}
