package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthtrack/internal/blob"
	"wealthtrack/internal/core"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
}

func openTestLedger(t *testing.T, opts ...Option) (*Ledger, *blob.MemoryStore) {
	t.Helper()
	store := blob.NewMemoryStore()
	opts = append([]Option{WithClock(fixedClock())}, opts...)
	l, err := Open(context.Background(), store, opts...)
	require.NoError(t, err)
	return l, store
}

func expenseInput(desc, category, amount string) TransactionInput {
	return TransactionInput{
		Date:        core.NewDate(2026, 3, 10),
		Description: desc,
		Amount:      d(amount),
		Type:        core.Expense,
		Category:    category,
	}
}

func TestOpenSeedsDefaultSuggestions(t *testing.T) {
	l, _ := openTestLedger(t)

	suggestions := l.Suggestions()
	require.Len(t, suggestions, 5)
	assert.Equal(t, "s1", suggestions[0].ID)
}

func TestOpenReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStore()

	first, err := Open(ctx, store, WithClock(fixedClock()))
	require.NoError(t, err)
	tx, err := first.AddTransaction(ctx, expenseInput("Rent", "Housing", "15000"))
	require.NoError(t, err)
	require.NoError(t, first.ToggleSuggestionImplemented(ctx, "s2"))

	second, err := Open(ctx, store, WithClock(fixedClock()))
	require.NoError(t, err)

	transactions := second.Transactions()
	require.Len(t, transactions, 1)
	assert.Equal(t, tx.ID, transactions[0].ID)

	for _, s := range second.Suggestions() {
		if s.ID == "s2" {
			assert.True(t, s.Implemented)
		}
	}
}

func TestAddTransactionPrepends(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	older, err := l.AddTransaction(ctx, expenseInput("Older", "Food", "100"))
	require.NoError(t, err)
	newer, err := l.AddTransaction(ctx, expenseInput("Newer", "Food", "200"))
	require.NoError(t, err)

	transactions := l.Transactions()
	require.Len(t, transactions, 2)
	assert.Equal(t, newer.ID, transactions[0].ID)
	assert.Equal(t, older.ID, transactions[1].ID)
}

func TestBudgetSpentTracksTransactions(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	_, err := l.AddTransaction(ctx, expenseInput("Groceries", "Food", "1200"))
	require.NoError(t, err)

	// A budget added after its expenses immediately reflects them.
	b, err := l.AddBudget(ctx, BudgetInput{Name: "Food", Allocated: d("5000")})
	require.NoError(t, err)
	assert.True(t, b.Spent.Equal(d("1200")), "spent %s", b.Spent)
	assert.Equal(t, core.CategoryColor("Food"), b.Color)

	tx, err := l.AddTransaction(ctx, expenseInput("Restaurant", "Food", "800"))
	require.NoError(t, err)
	assert.True(t, l.Budgets()[0].Spent.Equal(d("2000")))

	require.NoError(t, l.DeleteTransaction(ctx, tx.ID))
	assert.True(t, l.Budgets()[0].Spent.Equal(d("1200")))
}

func TestUpdateBudgetOverridesCallerSpent(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	_, err := l.AddTransaction(ctx, expenseInput("Groceries", "Food", "700"))
	require.NoError(t, err)
	b, err := l.AddBudget(ctx, BudgetInput{Name: "Food", Allocated: d("5000")})
	require.NoError(t, err)

	b.Allocated = d("6000")
	b.Spent = d("99999") // derived field, must be recomputed
	require.NoError(t, l.UpdateBudget(ctx, b))

	got := l.Budgets()[0]
	assert.True(t, got.Allocated.Equal(d("6000")))
	assert.True(t, got.Spent.Equal(d("700")))
}

func TestBudgetsPersistOnlyWhenSpentMoves(t *testing.T) {
	ctx := context.Background()
	l, store := openTestLedger(t)

	_, err := l.AddBudget(ctx, BudgetInput{Name: "Travel", Allocated: d("10000")})
	require.NoError(t, err)
	budgetsBefore, err := store.Get(ctx, KeyBudgets)
	require.NoError(t, err)

	// A transaction outside the budget category leaves budgets untouched.
	_, err = l.AddTransaction(ctx, expenseInput("Groceries", "Food", "500"))
	require.NoError(t, err)
	budgetsAfter, err := store.Get(ctx, KeyBudgets)
	require.NoError(t, err)
	assert.Equal(t, budgetsBefore, budgetsAfter)

	// A matching transaction rewrites them.
	_, err = l.AddTransaction(ctx, expenseInput("Flight", "Travel", "4000"))
	require.NoError(t, err)
	budgetsMoved, err := store.Get(ctx, KeyBudgets)
	require.NoError(t, err)
	assert.NotEqual(t, budgetsBefore, budgetsMoved)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	l, store := openTestLedger(t)

	require.NoError(t, l.DeleteTransaction(ctx, "missing"))
	require.NoError(t, l.UpdateTransaction(ctx, core.Transaction{ID: "missing"}))
	require.NoError(t, l.DeleteBudget(ctx, "missing"))
	require.NoError(t, l.DeleteInvestment(ctx, "missing"))
	require.NoError(t, l.ToggleSuggestionImplemented(ctx, "missing"))

	// Nothing was persisted by the misses.
	_, err := store.Get(ctx, KeyTransactions)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestInvestmentLifecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	inv, err := l.AddInvestment(ctx, InvestmentInput{
		Symbol:        "NIFTYBEES",
		Name:          "Nifty 50 ETF",
		Category:      "ETF",
		Shares:        d("100"),
		Price:         d("250"),
		PurchasePrice: d("200"),
		PurchaseDate:  core.NewDate(2025, 6, 1),
	})
	require.NoError(t, err)

	inv.Price = d("275")
	require.NoError(t, l.UpdateInvestment(ctx, inv))
	assert.True(t, l.Investments()[0].Price.Equal(d("275")))

	require.NoError(t, l.DeleteInvestment(ctx, inv.ID))
	assert.Empty(t, l.Investments())
}

func TestMergeSuggestionsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	batch := []core.OptimizationSuggestion{
		{ID: "sav-emergency", Title: "Build Emergency Fund"},
		{ID: "s1", Title: "Duplicate of a default"},
	}

	added, err := l.MergeSuggestions(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "only the unseen id is added")
	assert.Len(t, l.Suggestions(), 6)

	added, err = l.MergeSuggestions(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, l.Suggestions(), 6)

	// The stored record wins over a regenerated one.
	for _, s := range l.Suggestions() {
		if s.ID == "s1" {
			assert.Equal(t, "Create Emergency Fund", s.Title)
		}
	}
}

func TestClearAllResetsEverything(t *testing.T) {
	ctx := context.Background()
	l, store := openTestLedger(t)

	_, err := l.AddTransaction(ctx, expenseInput("Rent", "Housing", "15000"))
	require.NoError(t, err)
	_, err = l.AddBudget(ctx, BudgetInput{Name: "Housing", Allocated: d("20000")})
	require.NoError(t, err)
	require.NoError(t, l.ToggleSuggestionImplemented(ctx, "s1"))

	require.NoError(t, l.ClearAll(ctx))

	assert.Empty(t, l.Transactions())
	assert.Empty(t, l.Budgets())
	assert.Empty(t, l.Investments())

	suggestions := l.Suggestions()
	require.Len(t, suggestions, 5)
	for _, s := range suggestions {
		assert.False(t, s.Implemented)
	}

	_, err = store.Get(ctx, KeyTransactions)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	// The ledger keeps working after a clear.
	_, err = l.AddTransaction(ctx, expenseInput("Fresh start", "Food", "100"))
	require.NoError(t, err)
	assert.Len(t, l.Transactions(), 1)
}

func TestSnapshotAndAdviceData(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	_, err := l.AddTransaction(ctx, TransactionInput{
		Date: core.NewDate(2026, 3, 1), Description: "Salary",
		Amount: d("50000"), Type: core.Income, Category: "Salary",
	})
	require.NoError(t, err)
	_, err = l.AddTransaction(ctx, expenseInput("Rent", "Housing", "15000"))
	require.NoError(t, err)
	// Outside the clock's month: excluded from monthly views.
	_, err = l.AddTransaction(ctx, TransactionInput{
		Date: core.NewDate(2026, 2, 1), Description: "Old rent",
		Amount: d("15000"), Type: core.Expense, Category: "Housing",
	})
	require.NoError(t, err)
	_, err = l.AddInvestment(ctx, InvestmentInput{
		Symbol: "GOLDBEES", Name: "Gold ETF", Category: "ETF",
		Shares: d("10"), Price: d("50"), PurchasePrice: d("40"),
		PurchaseDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	snap := l.Snapshot()
	assert.True(t, snap.Summary.MonthlyIncome.Equal(d("50000")))
	assert.True(t, snap.Summary.MonthlyExpenses.Equal(d("15000")))
	assert.True(t, snap.TotalInvestmentValue.Equal(d("500")))
	assert.Len(t, snap.MonthlyTransactions, 2)

	data := l.AdviceData()
	assert.Len(t, data.Transactions, 2)
	assert.True(t, data.Income.Equal(d("50000")))
	assert.True(t, data.Expenses.Equal(d("15000")))
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []string
}

func (p *recordingPublisher) PublishChange(_ context.Context, collection, op, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, collection+":"+op)
	return nil
}

func TestMutationsPublishChangeEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l, _ := openTestLedger(t, WithPublisher(pub))

	tx, err := l.AddTransaction(ctx, expenseInput("Rent", "Housing", "15000"))
	require.NoError(t, err)
	require.NoError(t, l.DeleteTransaction(ctx, tx.ID))
	require.NoError(t, l.ClearAll(ctx))

	assert.Equal(t, []string{
		"transactions:create",
		"transactions:delete",
		"all:clear",
	}, pub.changes)
}

func TestPersistedShapeIsStable(t *testing.T) {
	ctx := context.Background()
	l, store := openTestLedger(t)

	_, err := l.AddTransaction(ctx, expenseInput("Rent", "Housing", "15000"))
	require.NoError(t, err)

	raw, err := store.Get(ctx, KeyTransactions)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Rent", decoded[0]["description"])
	assert.Equal(t, "2026-03-10", decoded[0]["date"])
	assert.Equal(t, "expense", decoded[0]["type"])
}
