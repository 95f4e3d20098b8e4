// Package ledger owns the canonical financial collections: transactions,
// budgets, investments and optimization suggestions. All mutation flows
// through it; derived state is recomputed synchronously before a mutator
// returns, and every mutation rewrites the affected collection in the
// backing blob store.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wealthtrack/internal/blob"
	"wealthtrack/internal/core"
	"wealthtrack/internal/log"
)

// Blob store keys, one per collection. Values are JSON arrays.
const (
	KeyTransactions = "transactions"
	KeyBudgets      = "budgets"
	KeyInvestments  = "investments"
	KeySuggestions  = "optimization-suggestions"
)

// Publisher receives best-effort change notifications after a mutation has
// been applied and persisted. Publish failures never fail the mutation.
type Publisher interface {
	PublishChange(ctx context.Context, collection, op, id string) error
}

// Ledger is the single source of truth for the four collections.
type Ledger struct {
	mu     sync.Mutex
	store  blob.Store
	events Publisher
	logger *log.Logger
	now    func() time.Time

	transactions []core.Transaction
	budgets      []core.BudgetCategory
	investments  []core.Investment
	suggestions  []core.OptimizationSuggestion
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher attaches a change-event publisher.
func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.events = p }
}

// WithClock overrides the clock used for monthly partitioning.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Open constructs a Ledger and loads all collections from the store.
// An absent suggestions key yields the fixed default suggestion set.
func Open(ctx context.Context, store blob.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.load(ctx); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		"transactions", len(l.transactions),
		"budgets", len(l.budgets),
		"investments", len(l.investments),
		"suggestions", len(l.suggestions))
	return l, nil
}

func (l *Ledger) load(ctx context.Context) error {
	if err := loadCollection(ctx, l.store, KeyTransactions, &l.transactions); err != nil {
		return err
	}
	if err := loadCollection(ctx, l.store, KeyBudgets, &l.budgets); err != nil {
		return err
	}
	if err := loadCollection(ctx, l.store, KeyInvestments, &l.investments); err != nil {
		return err
	}
	found, err := loadOptional(ctx, l.store, KeySuggestions, &l.suggestions)
	if err != nil {
		return err
	}
	if !found {
		l.suggestions = core.DefaultSuggestions()
	}
	return nil
}

func loadCollection[T any](ctx context.Context, store blob.Store, key string, dst *[]T) error {
	_, err := loadOptional(ctx, store, key, dst)
	return err
}

func loadOptional[T any](ctx context.Context, store blob.Store, key string, dst *[]T) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err == blob.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// TransactionInput carries the caller-supplied fields of a new transaction.
type TransactionInput struct {
	Date        core.Date
	Description string
	Amount      decimal.Decimal
	Type        core.TransactionType
	Category    string
}

// BudgetInput carries the caller-supplied fields of a new budget category.
// Spent and color are derived by the ledger.
type BudgetInput struct {
	Name      string
	Allocated decimal.Decimal
}

// InvestmentInput carries the caller-supplied fields of a new investment.
type InvestmentInput struct {
	Symbol        string
	Name          string
	Category      string
	Shares        decimal.Decimal
	Price         decimal.Decimal
	PurchasePrice decimal.Decimal
	PurchaseDate  core.Date
}

// AddTransaction assigns a fresh id and prepends the transaction. The input
// shape is trusted; validation is a boundary concern.
func (l *Ledger) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
	}
	l.transactions = append([]core.Transaction{tx}, l.transactions...)

	if err := l.afterTransactionChange(ctx); err != nil {
		return core.Transaction{}, err
	}
	l.publish(ctx, KeyTransactions, log.OpCreate, tx.ID)
	return tx, nil
}

// UpdateTransaction replaces the transaction with a matching id.
// An unknown id is a no-op, not an error.
func (l *Ledger) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	replaced := false
	for i := range l.transactions {
		if l.transactions[i].ID == tx.ID {
			l.transactions[i] = tx
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}

	if err := l.afterTransactionChange(ctx); err != nil {
		return err
	}
	l.publish(ctx, KeyTransactions, log.OpUpdate, tx.ID)
	return nil
}

// DeleteTransaction removes the transaction with the given id; no-op if absent.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := false
	out := l.transactions[:0]
	for _, t := range l.transactions {
		if t.ID == id {
			removed = true
			continue
		}
		out = append(out, t)
	}
	if !removed {
		return nil
	}
	l.transactions = out

	if err := l.afterTransactionChange(ctx); err != nil {
		return err
	}
	l.publish(ctx, KeyTransactions, log.OpDelete, id)
	return nil
}

// afterTransactionChange persists the transaction collection and, when the
// recomputation actually moved a budget's spent value, the budgets too.
// Callers must hold l.mu.
func (l *Ledger) afterTransactionChange(ctx context.Context) error {
	budgetsChanged := l.recomputeDerived()
	if err := l.persist(ctx, KeyTransactions, l.transactions); err != nil {
		return err
	}
	if budgetsChanged {
		if err := l.persist(ctx, KeyBudgets, l.budgets); err != nil {
			return err
		}
	}
	return nil
}

// AddBudget assigns an id, zero spent and a color from the category table,
// then recomputes so the new budget immediately reflects matching expenses.
func (l *Ledger) AddBudget(ctx context.Context, in BudgetInput) (core.BudgetCategory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := core.BudgetCategory{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Allocated: in.Allocated,
		Spent:     decimal.Zero,
		Color:     core.CategoryColor(in.Name),
	}
	l.budgets = append(l.budgets, b)

	l.recomputeDerived()
	if err := l.persist(ctx, KeyBudgets, l.budgets); err != nil {
		return core.BudgetCategory{}, err
	}
	l.publish(ctx, KeyBudgets, log.OpCreate, b.ID)

	// Return the stored record, spent included.
	for _, stored := range l.budgets {
		if stored.ID == b.ID {
			return stored, nil
		}
	}
	return b, nil
}

// UpdateBudget replaces the budget with a matching id. The spent field is
// derived and immediately recomputed, so caller-supplied values for it are
// overwritten. Unknown ids are a no-op.
func (l *Ledger) UpdateBudget(ctx context.Context, b core.BudgetCategory) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	replaced := false
	for i := range l.budgets {
		if l.budgets[i].ID == b.ID {
			l.budgets[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}

	l.recomputeDerived()
	if err := l.persist(ctx, KeyBudgets, l.budgets); err != nil {
		return err
	}
	l.publish(ctx, KeyBudgets, log.OpUpdate, b.ID)
	return nil
}

// DeleteBudget removes the budget with the given id; no-op if absent.
func (l *Ledger) DeleteBudget(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := false
	out := l.budgets[:0]
	for _, b := range l.budgets {
		if b.ID == id {
			removed = true
			continue
		}
		out = append(out, b)
	}
	if !removed {
		return nil
	}
	l.budgets = out

	if err := l.persist(ctx, KeyBudgets, l.budgets); err != nil {
		return err
	}
	l.publish(ctx, KeyBudgets, log.OpDelete, id)
	return nil
}

// AddInvestment assigns a fresh id and appends the investment. Derived
// values (current value, cost basis, gain/loss) are computed on read.
func (l *Ledger) AddInvestment(ctx context.Context, in InvestmentInput) (core.Investment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inv := core.Investment{
		ID:            uuid.NewString(),
		Symbol:        in.Symbol,
		Name:          in.Name,
		Category:      in.Category,
		Shares:        in.Shares,
		Price:         in.Price,
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  in.PurchaseDate,
	}
	l.investments = append(l.investments, inv)

	if err := l.persist(ctx, KeyInvestments, l.investments); err != nil {
		return core.Investment{}, err
	}
	l.publish(ctx, KeyInvestments, log.OpCreate, inv.ID)
	return inv, nil
}

// UpdateInvestment replaces the investment with a matching id; no-op if absent.
func (l *Ledger) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	replaced := false
	for i := range l.investments {
		if l.investments[i].ID == inv.ID {
			l.investments[i] = inv
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}

	if err := l.persist(ctx, KeyInvestments, l.investments); err != nil {
		return err
	}
	l.publish(ctx, KeyInvestments, log.OpUpdate, inv.ID)
	return nil
}

// DeleteInvestment removes the investment with the given id; no-op if absent.
func (l *Ledger) DeleteInvestment(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := false
	out := l.investments[:0]
	for _, inv := range l.investments {
		if inv.ID == id {
			removed = true
			continue
		}
		out = append(out, inv)
	}
	if !removed {
		return nil
	}
	l.investments = out

	if err := l.persist(ctx, KeyInvestments, l.investments); err != nil {
		return err
	}
	l.publish(ctx, KeyInvestments, log.OpDelete, id)
	return nil
}

// ToggleSuggestionImplemented flips the implemented flag of one suggestion;
// no-op if the id is unknown.
func (l *Ledger) ToggleSuggestionImplemented(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	toggled := false
	for i := range l.suggestions {
		if l.suggestions[i].ID == id {
			l.suggestions[i].Implemented = !l.suggestions[i].Implemented
			toggled = true
			break
		}
	}
	if !toggled {
		return nil
	}

	if err := l.persist(ctx, KeySuggestions, l.suggestions); err != nil {
		return err
	}
	l.publish(ctx, KeySuggestions, log.OpUpdate, id)
	return nil
}

// MergeSuggestions appends suggestions whose ids are not already stored.
// Existing records are never replaced, so re-running the engine on the same
// snapshot is idempotent. Returns the number of suggestions added.
func (l *Ledger) MergeSuggestions(ctx context.Context, batch []core.OptimizationSuggestion) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing := make(map[string]struct{}, len(l.suggestions))
	for _, s := range l.suggestions {
		existing[s.ID] = struct{}{}
	}

	added := 0
	for _, s := range batch {
		if _, ok := existing[s.ID]; ok {
			continue
		}
		existing[s.ID] = struct{}{}
		l.suggestions = append(l.suggestions, s)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := l.persist(ctx, KeySuggestions, l.suggestions); err != nil {
		return 0, err
	}
	l.publish(ctx, KeySuggestions, log.OpCreate, "")
	l.logger.InfoContext(ctx, "Merged optimization suggestions",
		log.FieldOperation, log.OpGenerate, log.FieldCount, added)
	return added, nil
}

// ClearAll resets every collection (suggestions back to the default set)
// and purges the backing store. Destructive and irreversible; confirmation
// is a caller concern.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = nil
	l.budgets = nil
	l.investments = nil
	l.suggestions = core.DefaultSuggestions()

	if err := l.store.Purge(ctx); err != nil {
		return fmt.Errorf("purge store: %w", err)
	}
	l.publish(ctx, "all", log.OpClear, "")
	l.logger.InfoContext(ctx, "All financial data cleared", log.FieldOperation, log.OpClear)
	return nil
}

// recomputeDerived recomputes each budget's spent from the transaction
// ledger. It reports whether any value changed; callers skip the budget
// write when nothing moved, which keeps repeated recomputation from
// feeding back into further updates.
func (l *Ledger) recomputeDerived() bool {
	changed := false
	for i := range l.budgets {
		spent := core.SpentByCategory(l.transactions, l.budgets[i].Name)
		if !l.budgets[i].Spent.Equal(spent) {
			l.budgets[i].Spent = spent
			changed = true
		}
	}
	return changed
}

func (l *Ledger) persist(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	l.logger.DebugContext(ctx, "Collection persisted",
		log.FieldOperation, log.OpPersist, log.FieldKey, key)
	return nil
}

func (l *Ledger) publish(ctx context.Context, collection, op, id string) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishChange(ctx, collection, op, id); err != nil {
		l.logger.WarnContext(ctx, "Change event publish failed",
			log.FieldOperation, log.OpPublish,
			log.FieldCollection, collection,
			log.FieldError, err)
	}
}
