package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

const (
	SuggestionExpense    SuggestionCategory = "expense"
	SuggestionInvestment SuggestionCategory = "investment"
	SuggestionBudget     SuggestionCategory = "budget"
	SuggestionSavings    SuggestionCategory = "savings"
)

type (
	TransactionType    string
	Impact             string
	SuggestionCategory string

	// Date is a calendar date without a time-of-day component.
	// It marshals to the "2006-01-02" form used in the persisted ledger.
	Date struct {
		time.Time
	}

	// Transaction is a single income or expense record. Immutable once
	// created except via full replace-by-id in the ledger.
	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
	}

	// BudgetCategory tracks an allocation for one spending category.
	// Spent is derived from the transaction ledger and never set by callers.
	BudgetCategory struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Allocated decimal.Decimal `json:"allocated"`
		Spent     decimal.Decimal `json:"spent"`
		Color     string          `json:"color"`
	}

	// Investment is a holding tracked independently of the transaction
	// ledger. Value, cost basis and gain/loss are computed on read.
	Investment struct {
		ID            string          `json:"id"`
		Symbol        string          `json:"symbol"`
		Name          string          `json:"name"`
		Category      string          `json:"category"`
		Shares        decimal.Decimal `json:"shares"`
		Price         decimal.Decimal `json:"price"`
		PurchasePrice decimal.Decimal `json:"purchasePrice"`
		PurchaseDate  Date            `json:"purchaseDate"`
	}

	// OptimizationSuggestion is a structured, categorized recommendation.
	// The ID is derived from the suggestion's semantic source (for example
	// "budget-food"), never randomly generated, so re-running the engine
	// deduplicates naturally against previously stored suggestions.
	OptimizationSuggestion struct {
		ID               string             `json:"id"`
		Title            string             `json:"title"`
		Description      string             `json:"description"`
		Impact           Impact             `json:"impact"`
		Category         SuggestionCategory `json:"category"`
		PotentialSavings decimal.Decimal    `json:"potentialSavings"`
		PotentialReturn  decimal.Decimal    `json:"potentialReturn"`
		Implemented      bool               `json:"implemented"`
		HowToFix         string             `json:"howToFix,omitempty"`
	}

	// Goal is a savings goal carried on advice snapshots. No rule consumes
	// goals today; they ride along for forward compatibility.
	Goal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    Date            `json:"targetDate"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidShares    = errors.New("invalid shares")
)

const dateLayout = "2006-01-02"

func init() {
	// Amounts serialize as JSON numbers in both the API and the store.
	decimal.MarshalJSONWithoutQuotes = true
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Tolerate full timestamps written by earlier clients.
	var lastErr error
	for _, layout := range []string{dateLayout, time.RFC3339} {
		t, err := time.Parse(layout, s)
		if err == nil {
			*d = Date{Time: t}
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// SameMonth reports whether the date falls in the same calendar month as ref.
func (d Date) SameMonth(ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b BudgetCategory) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if !b.Allocated.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Symbol) == "" {
		return errors.New("empty symbol")
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if !i.Shares.IsPositive() {
		return ErrInvalidShares
	}
	if i.Price.IsNegative() || i.PurchasePrice.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// CurrentValue returns shares multiplied by the current unit price.
func (i Investment) CurrentValue() decimal.Decimal {
	return i.Shares.Mul(i.Price)
}

// CostBasis returns shares multiplied by the unit purchase price.
func (i Investment) CostBasis() decimal.Decimal {
	return i.Shares.Mul(i.PurchasePrice)
}

// GainLoss returns the unrealized gain, negative when underwater.
func (i Investment) GainLoss() decimal.Decimal {
	return i.CurrentValue().Sub(i.CostBasis())
}

// Utilization returns spent as a percentage of the allocation.
// A zero allocation yields 0 rather than a non-finite value.
func (b BudgetCategory) Utilization() float64 {
	if b.Allocated.IsZero() {
		return 0
	}
	pct, _ := b.Spent.Div(b.Allocated).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// Remaining returns allocated minus spent; negative when over budget.
func (b BudgetCategory) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Spent)
}
