package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"wealthtrack/internal/advisor"
	"wealthtrack/internal/core"
	"wealthtrack/internal/log"
)

type adviceRequest struct {
	FinancialData json.RawMessage `json:"financialData"`
	SpecificArea  string          `json:"specificArea"`
}

// financialDataPayload keeps every field raw so malformed values degrade
// per-field instead of failing the whole request.
type financialDataPayload struct {
	TotalBalance    json.RawMessage `json:"totalBalance"`
	MonthlyIncome   json.RawMessage `json:"monthlyIncome"`
	MonthlyExpenses json.RawMessage `json:"monthlyExpenses"`
	Transactions    json.RawMessage `json:"transactions"`
	Investments     json.RawMessage `json:"investments"`
	Budgets         json.RawMessage `json:"budgets"`
	Goals           json.RawMessage `json:"goals"`
}

type adviceResponse struct {
	Suggestions  []string `json:"suggestions"`
	Error        string   `json:"error,omitempty"`
	ErrorDetails string   `json:"errorDetails,omitempty"`
}

// handleFinancialAdvice generates advice from a posted snapshot. The
// endpoint never fails: any malformed input or generator error answers 200
// with the starter tips and an error field describing what went wrong.
func (s *Server) handleFinancialAdvice(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusOK, adviceResponse{
			Error:       "Failed to process request. Using default suggestions.",
			Suggestions: advisor.StarterTips(),
		})
		return
	}

	digest := sha256.Sum256(body)
	cacheKey := hex.EncodeToString(digest[:])
	if cached, found := s.adviceCache.Get(cacheKey); found {
		s.logger.DebugContext(r.Context(), "Advice cache hit", log.FieldKey, cacheKey)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	var req adviceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, adviceResponse{
			Error:        "Failed to process request. Using default suggestions.",
			ErrorDetails: err.Error(),
			Suggestions:  advisor.StarterTips(),
		})
		return
	}

	if len(req.FinancialData) == 0 || string(req.FinancialData) == "null" {
		writeJSON(w, http.StatusOK, adviceResponse{
			Error:       "Financial data is required",
			Suggestions: advisor.StarterTips(),
		})
		return
	}

	var payload financialDataPayload
	if err := json.Unmarshal(req.FinancialData, &payload); err != nil {
		writeJSON(w, http.StatusOK, adviceResponse{
			Error:        "Failed to process request. Using default suggestions.",
			ErrorDetails: err.Error(),
			Suggestions:  advisor.StarterTips(),
		})
		return
	}

	income, incomeOK := parseNumber(payload.MonthlyIncome)
	expenses, expensesOK := parseNumber(payload.MonthlyExpenses)
	if _, balanceOK := parseNumber(payload.TotalBalance); !balanceOK || !incomeOK || !expensesOK {
		writeJSON(w, http.StatusOK, adviceResponse{
			Error:       "Invalid financial data format. Numbers expected for totalBalance, monthlyIncome, and monthlyExpenses.",
			Suggestions: advisor.StarterTips(),
		})
		return
	}

	data := &core.AdviceData{
		Transactions: parseArray[core.Transaction](payload.Transactions),
		Investments:  parseArray[core.Investment](payload.Investments),
		Goals:        parseArray[core.Goal](payload.Goals),
		Income:       income,
		Expenses:     expenses,
	}

	tips, genErr := s.generateAdvice(data, req.SpecificArea)
	if genErr != nil {
		s.logger.ErrorContext(r.Context(), "Advice generation failed",
			log.FieldOperation, log.OpGenerate, log.FieldError, genErr)
		writeJSON(w, http.StatusOK, adviceResponse{
			Error:        "Failed to generate suggestions. Using default suggestions instead.",
			ErrorDetails: genErr.Error(),
			Suggestions:  advisor.StarterTips(),
		})
		return
	}

	resp := adviceResponse{Suggestions: tips}
	s.adviceCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// generateAdvice wraps the rule engine so a panic inside a rule degrades to
// the fallback response instead of a 500.
func (s *Server) generateAdvice(data *core.AdviceData, area string) (tips []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("advice generation panicked: %v", rec)
		}
	}()
	tips = advisor.Advise(data, area)
	if tips == nil {
		tips = []string{}
	}
	return tips, nil
}

// parseNumber accepts only a JSON number. Strings, booleans, null and
// absent values all fail.
func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Decimal{}, false
	}
	c := raw[0]
	if c != '-' && (c < '0' || c > '9') {
		return decimal.Decimal{}, false
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// parseArray decodes a JSON array; anything else yields an empty slice.
func parseArray[T any](raw json.RawMessage) []T {
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
