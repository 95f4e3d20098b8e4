package core

import "github.com/shopspring/decimal"

// DefaultSuggestions returns the fixed starter set of optimization
// suggestions seeded on first run and restored by a full data clear.
// A fresh slice is returned so callers may mutate it freely.
func DefaultSuggestions() []OptimizationSuggestion {
	return []OptimizationSuggestion{
		{
			ID:          "s1",
			Title:       "Create Emergency Fund",
			Description: "Build an emergency fund with 3-6 months of expenses to protect against unexpected financial shocks.",
			Impact:      ImpactHigh,
			Category:    SuggestionSavings,
		},
		{
			ID:          "s2",
			Title:       "Track All Expenses",
			Description: "Record all expenses to identify spending patterns and find opportunities to save.",
			Impact:      ImpactMedium,
			Category:    SuggestionExpense,
		},
		{
			ID:              "s3",
			Title:           "Set Up Automatic Investments",
			Description:     "Set up automatic monthly investments to build wealth consistently over time.",
			Impact:          ImpactHigh,
			Category:        SuggestionInvestment,
			PotentialReturn: decimal.NewFromInt(50000),
		},
		{
			ID:               "s4",
			Title:            "Review Subscriptions",
			Description:      "Review all subscriptions and cancel those you don't use regularly.",
			Impact:           ImpactLow,
			Category:         SuggestionExpense,
			PotentialSavings: decimal.NewFromInt(12000),
		},
		{
			ID:               "s5",
			Title:            "Tax-Saving Investments",
			Description:      "Maximize tax-saving investments under Section 80C to reduce your tax liability.",
			Impact:           ImpactMedium,
			Category:         SuggestionInvestment,
			PotentialSavings: decimal.NewFromInt(46800),
		},
	}
}
