package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthtrack/internal/blob"
	"wealthtrack/internal/core"
	"wealthtrack/internal/export"
	expmem "wealthtrack/internal/export/memory"
	"wealthtrack/internal/ledger"
	"wealthtrack/internal/log"
	"wealthtrack/internal/optimizer"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

var starterTips = []string{
	"Start tracking your expenses to get personalized advice",
	"Set up a budget to better manage your finances",
	"Consider setting up automatic savings",
	"Review your recurring subscriptions",
	"Create an emergency fund",
}

func newTestServer(t *testing.T, exporter *expmem.Store) (*Server, *ledger.Ledger) {
	t.Helper()

	led, err := ledger.Open(context.Background(), blob.NewMemoryStore())
	require.NoError(t, err)

	var exp export.TransactionExporter
	if exporter != nil {
		exp = exporter
	}

	srv := NewServer(":0", led, optimizer.New(), exp, 15*time.Second, log.New(log.DefaultConfig()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, led
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/readyz", nil).Code)
}

func TestAdviceMissingFinancialData(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/financial-advice", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, "the endpoint degrades, never fails")

	resp := decode[adviceResponse](t, rec)
	assert.Equal(t, "Financial data is required", resp.Error)
	assert.Equal(t, starterTips, resp.Suggestions)
}

func TestAdviceRejectsNonNumericFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/financial-advice", map[string]any{
		"financialData": map[string]any{
			"totalBalance":    "a lot",
			"monthlyIncome":   50000,
			"monthlyExpenses": 30000,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[adviceResponse](t, rec)
	assert.Contains(t, resp.Error, "Numbers expected")
	assert.Equal(t, starterTips, resp.Suggestions)
}

func TestAdviceMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/financial-advice",
		bytes.NewBufferString(`{"financialData": `))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[adviceResponse](t, rec)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, starterTips, resp.Suggestions)
}

func TestAdvicePersonalized(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := map[string]any{
		"financialData": map[string]any{
			"totalBalance":    20000,
			"monthlyIncome":   10000,
			"monthlyExpenses": 2000,
			"transactions": []map[string]any{{
				"id": "t1", "date": "2026-03-10", "description": "Groceries",
				"amount": 2000, "type": "expense", "category": "Food",
			}},
			// Non-array collections degrade to empty instead of failing.
			"investments": "none",
		},
	}

	rec := do(t, srv, http.MethodPost, "/api/financial-advice", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[adviceResponse](t, rec)
	assert.Empty(t, resp.Error)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "Consider reducing spending in Food category. It's taking up 20% of your income.", resp.Suggestions[0])

	// Identical requests are served from the cache with the same answer.
	again := decode[adviceResponse](t, do(t, srv, http.MethodPost, "/api/financial-advice", body))
	assert.Equal(t, resp, again)
}

func TestTransactionCRUD(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: "2026-03-10", Description: "Rent", Amount: d("15000"),
		Type: "expense", Category: "Housing",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[core.Transaction](t, rec)
	assert.NotEmpty(t, created.ID)

	list := decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/api/transactions", nil))
	require.Len(t, list, 1)

	rec = do(t, srv, http.MethodPut, "/api/transactions/"+created.ID, transactionRequest{
		Date: "2026-03-10", Description: "Rent March", Amount: d("15000"),
		Type: "expense", Category: "Housing",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/api/transactions", nil))
	assert.Equal(t, "Rent March", list[0].Description)

	rec = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	list = decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/api/transactions", nil))
	assert.Empty(t, list)
}

func TestCreateTransactionValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: "2026-03-10", Description: "", Amount: d("100"),
		Type: "expense", Category: "Food",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: "not-a-date", Description: "x", Amount: d("100"),
		Type: "expense", Category: "Food",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBudgetEndpointsDeriveSpent(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: time.Now().UTC().Format("2006-01-02"), Description: "Groceries",
		Amount: d("1200"), Type: "expense", Category: "Food",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/budgets", budgetRequest{Name: "Food", Allocated: d("5000")})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[core.BudgetCategory](t, rec)
	assert.True(t, created.Spent.Equal(d("1200")), "spent %s", created.Spent)
	assert.Equal(t, "bg-wealth-yellow", created.Color)
}

func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	today := time.Now().UTC().Format("2006-01-02")
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: today, Description: "Salary", Amount: d("50000"), Type: "income", Category: "Salary",
	}).Code)
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: today, Description: "Rent", Amount: d("20000"), Type: "expense", Category: "Housing",
	}).Code)

	rec := do(t, srv, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[core.Summary](t, rec)
	assert.True(t, summary.TotalBalance.Equal(d("30000")))
	assert.InDelta(t, 60.0, summary.SavingsRate, 0.001)
}

func TestOptimizeEndpoint(t *testing.T) {
	srv, led := newTestServer(t, nil)

	today := time.Now().UTC().Format("2006-01-02")
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: today, Description: "Salary", Amount: d("50000"), Type: "income", Category: "Salary",
	}).Code)

	rec := do(t, srv, http.MethodPost, "/api/optimize", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[optimizeResponse](t, rec)
	assert.NotZero(t, resp.Added)
	assert.LessOrEqual(t, len(resp.Suggestions), 5)
	assert.Greater(t, len(led.Suggestions()), 5, "generated batch merged into the stored set")

	// A second run adds nothing new for the same snapshot.
	again := decode[optimizeResponse](t, do(t, srv, http.MethodPost, "/api/optimize", nil))
	assert.Zero(t, again.Added)
}

func TestToggleSuggestion(t *testing.T) {
	srv, led := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/suggestions/s1/toggle", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, s := range led.Suggestions() {
		if s.ID == "s1" {
			assert.True(t, s.Implemented)
		}
	}
}

func TestClearEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: "2026-03-10", Description: "Rent", Amount: d("15000"), Type: "expense", Category: "Housing",
	}).Code)

	require.Equal(t, http.StatusNoContent, do(t, srv, http.MethodPost, "/api/clear", nil).Code)

	list := decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/api/transactions", nil))
	assert.Empty(t, list)
	suggestions := decode[[]core.OptimizationSuggestion](t, do(t, srv, http.MethodGet, "/api/suggestions", nil))
	assert.Len(t, suggestions, 5)
}

func TestExportEndpoint(t *testing.T) {
	target := expmem.New()
	srv, _ := newTestServer(t, target)

	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", transactionRequest{
		Date: "2026-03-10", Description: "Rent", Amount: d("15000"), Type: "expense", Category: "Housing",
	}).Code)

	rec := do(t, srv, http.MethodPost, "/api/export/sheets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[exportResponse](t, rec).Exported)
	assert.Len(t, target.Exported(), 1)
}

func TestExportEndpointUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/export/sheets", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
