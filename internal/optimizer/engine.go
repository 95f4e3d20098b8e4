// Package optimizer derives structured optimization suggestions from a
// financial snapshot. Suggestion ids are stable semantic keys, so merging a
// freshly generated batch into the stored collection deduplicates against
// earlier runs. The engine also owns the seeded display rotation.
package optimizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"wealthtrack/internal/core"
)

var (
	diversifyReturnRate    = decimal.NewFromFloat(0.05)
	annualMarketReturnRate = decimal.NewFromFloat(0.07)
	investmentIncomeShare  = decimal.NewFromFloat(0.15)
	targetSavingsShare     = decimal.NewFromFloat(0.2)
	recurringReviewShare   = decimal.NewFromFloat(0.05)
	dailyTrackingShare     = decimal.NewFromFloat(0.03)
	emergencyFundMonths    = decimal.NewFromInt(6)
)

// Engine is the stateful suggestion generator. The seed counter advances
// once per generation run so successive display rotations differ but each
// individual rotation stays reproducible.
type Engine struct {
	mu    sync.Mutex
	seed  int
	shown map[string]struct{}
}

// New creates an Engine with an untouched rotation seed.
func New() *Engine {
	return &Engine{shown: make(map[string]struct{})}
}

// Generate derives a deduplicated suggestion batch from the snapshot.
// Every rule is independent; only the final assembly is ordered. The seed
// is bumped and the shown set cleared, matching one "regenerate" action.
func (e *Engine) Generate(snap core.FinancialSnapshot) []core.OptimizationSuggestion {
	e.mu.Lock()
	e.seed++
	e.shown = make(map[string]struct{})
	e.mu.Unlock()

	var batch []core.OptimizationSuggestion
	batch = append(batch, investmentSuggestions(snap)...)
	batch = append(batch, savingsSuggestions(snap)...)
	batch = append(batch, budgetSuggestions(snap)...)
	batch = append(batch, expenseSuggestions(snap)...)
	return dedupeByID(batch)
}

// Rotate returns the current display batch: suggestions not yet implemented
// and not yet shown this session, shuffled by the current seed, first five.
func (e *Engine) Rotate(all []core.OptimizationSuggestion) []core.OptimizationSuggestion {
	e.mu.Lock()
	defer e.mu.Unlock()

	var actionable []core.OptimizationSuggestion
	for _, s := range all {
		if s.Implemented {
			continue
		}
		if _, seen := e.shown[s.ID]; seen {
			continue
		}
		actionable = append(actionable, s)
	}
	if len(actionable) == 0 {
		return nil
	}

	shuffled := Shuffle(actionable, e.seed)
	if len(shuffled) > 5 {
		shuffled = shuffled[:5]
	}
	return shuffled
}

// MarkShown records ids as shown for the current session, removing them
// from subsequent rotations until the next generation run.
func (e *Engine) MarkShown(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.shown[id] = struct{}{}
	}
}

// Seed returns the current rotation seed.
func (e *Engine) Seed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seed
}

func investmentSuggestions(snap core.FinancialSnapshot) []core.OptimizationSuggestion {
	if len(snap.Investments) > 0 {
		return []core.OptimizationSuggestion{{
			ID:              "inv-diversify",
			Title:           "Diversify Your Investment Portfolio",
			Description:     "Consider adding different types of investments to reduce risk and potentially increase returns.",
			Impact:          core.ImpactHigh,
			Category:        core.SuggestionInvestment,
			PotentialReturn: snap.TotalInvestmentValue.Mul(diversifyReturnRate),
			HowToFix:        "Review your current portfolio allocation and consider adding different asset classes like bonds, international stocks, or alternative investments.",
		}}
	}

	recommendedMonthly := snap.Summary.MonthlyIncome.Mul(investmentIncomeShare)
	return []core.OptimizationSuggestion{{
		ID:              "inv-start",
		Title:           "Start Building Your Investment Portfolio",
		Description:     "Begin investing to grow your wealth and achieve long-term financial goals.",
		Impact:          core.ImpactHigh,
		Category:        core.SuggestionInvestment,
		PotentialReturn: recommendedMonthly.Mul(decimal.NewFromInt(12)).Mul(annualMarketReturnRate),
		HowToFix:        "Start with a small amount and gradually increase your investment contributions. Consider low-cost index funds or ETFs as a starting point.",
	}}
}

func savingsSuggestions(snap core.FinancialSnapshot) []core.OptimizationSuggestion {
	emergencyFund := snap.Summary.MonthlyExpenses.Mul(emergencyFundMonths)
	monthlySavings := snap.Summary.MonthlyIncome.Sub(snap.Summary.MonthlyExpenses)

	return []core.OptimizationSuggestion{
		{
			ID:          "sav-emergency",
			Title:       "Build Emergency Fund",
			Description: fmt.Sprintf("Aim to save 6 months of expenses (%s) for emergencies.", core.FormatCurrency(emergencyFund)),
			Impact:      core.ImpactHigh,
			Category:    core.SuggestionSavings,
			HowToFix: fmt.Sprintf("Set up automatic transfers of %s monthly to build your emergency fund.",
				core.FormatCurrency(emergencyFund.Div(decimal.NewFromInt(12)))),
		},
		{
			ID:               "sav-increase",
			Title:            "Increase Monthly Savings",
			Description:      fmt.Sprintf("Your current savings rate is %.1f%%. Aim for at least 20%% of income.", snap.Summary.SavingsRate),
			Impact:           core.ImpactHigh,
			Category:         core.SuggestionSavings,
			PotentialSavings: snap.Summary.MonthlyIncome.Mul(targetSavingsShare).Sub(monthlySavings),
			HowToFix:         "Review your expenses and identify areas where you can cut back to increase savings.",
		},
	}
}

func budgetSuggestions(snap core.FinancialSnapshot) []core.OptimizationSuggestion {
	var out []core.OptimizationSuggestion
	for _, b := range snap.Budgets {
		// Utilization is 0 for a zero allocation, so such budgets never fire.
		if b.Utilization() <= 100 {
			continue
		}
		overspend := b.Remaining().Abs()
		out = append(out, core.OptimizationSuggestion{
			ID:               "budget-" + NormalizeCategory(b.Name),
			Title:            fmt.Sprintf("Reduce %s Spending", b.Name),
			Description:      fmt.Sprintf("You've exceeded your %s budget by %s.", b.Name, core.FormatCurrency(overspend)),
			Impact:           core.ImpactMedium,
			Category:         core.SuggestionBudget,
			PotentialSavings: overspend,
			HowToFix:         fmt.Sprintf("Review your %s expenses and identify areas to cut back. Consider setting a stricter budget limit.", b.Name),
		})
	}
	return out
}

func expenseSuggestions(snap core.FinancialSnapshot) []core.OptimizationSuggestion {
	return []core.OptimizationSuggestion{
		{
			ID:               "exp-review",
			Title:            "Review Recurring Expenses",
			Description:      "Regularly review and optimize your recurring expenses to save money.",
			Impact:           core.ImpactMedium,
			Category:         core.SuggestionExpense,
			PotentialSavings: snap.Summary.MonthlyExpenses.Mul(recurringReviewShare),
			HowToFix:         "List all your subscriptions and recurring payments. Cancel unused services and negotiate better rates.",
		},
		{
			ID:               "exp-track",
			Title:            "Track Daily Expenses",
			Description:      "Small daily expenses can add up significantly over time.",
			Impact:           core.ImpactMedium,
			Category:         core.SuggestionExpense,
			PotentialSavings: snap.Summary.MonthlyExpenses.Mul(dailyTrackingShare),
			HowToFix:         "Use the expense tracker to monitor daily spending and identify areas to cut back.",
		},
	}
}

// NormalizeCategory canonicalizes a category name for id derivation:
// trimmed and lowercased, so names differing only by case or surrounding
// whitespace collide on purpose and dedup keeps the first.
func NormalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// dedupeByID keeps the first occurrence of each id. Distinct rules can
// collide under edge-case category names.
func dedupeByID(batch []core.OptimizationSuggestion) []core.OptimizationSuggestion {
	seen := make(map[string]struct{}, len(batch))
	out := batch[:0]
	for _, s := range batch {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}
