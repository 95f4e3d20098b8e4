package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"wealthtrack/internal/core"
	"wealthtrack/internal/ledger"
	"wealthtrack/internal/log"
)

type transactionRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
}

type budgetRequest struct {
	Name      string          `json:"name"`
	Allocated decimal.Decimal `json:"allocated"`
}

type investmentRequest struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Shares        decimal.Decimal `json:"shares"`
	Price         decimal.Decimal `json:"price"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  string          `json:"purchaseDate"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list := s.ledger.Transactions()
	if list == nil {
		list = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction create failed",
			log.FieldOperation, log.OpCreate, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx := core.Transaction{
		ID:          r.PathValue("id"),
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
	}
	if err := s.ledger.UpdateTransaction(r.Context(), tx); err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction update failed",
			log.FieldOperation, log.OpUpdate,
			log.FieldTransactionID, tx.ID,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction delete failed",
			log.FieldOperation, log.OpDelete,
			log.FieldTransactionID, r.PathValue("id"),
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toInput validates the request and converts it to a ledger input.
func (req transactionRequest) toInput() (ledger.TransactionInput, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	tx := core.Transaction{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        core.TransactionType(req.Type),
		Category:    req.Category,
	}
	if err := tx.Validate(); err != nil {
		return ledger.TransactionInput{}, err
	}
	return ledger.TransactionInput{
		Date:        tx.Date,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
	}, nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	list := s.ledger.Budgets()
	if list == nil {
		list = []core.BudgetCategory{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidate := core.BudgetCategory{Name: req.Name, Allocated: req.Allocated}
	if err := candidate.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b, err := s.ledger.AddBudget(r.Context(), ledger.BudgetInput{Name: req.Name, Allocated: req.Allocated})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget create failed",
			log.FieldOperation, log.OpCreate, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b := core.BudgetCategory{
		ID:        r.PathValue("id"),
		Name:      req.Name,
		Allocated: req.Allocated,
		Color:     core.CategoryColor(req.Name),
	}
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.ledger.UpdateBudget(r.Context(), b); err != nil {
		s.logger.ErrorContext(r.Context(), "Budget update failed",
			log.FieldOperation, log.OpUpdate,
			log.FieldBudgetID, b.ID,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Budget delete failed",
			log.FieldOperation, log.OpDelete,
			log.FieldBudgetID, r.PathValue("id"),
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	list := s.ledger.Investments()
	if list == nil {
		list = []core.Investment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	inv, err := s.ledger.AddInvestment(r.Context(), in)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Investment create failed",
			log.FieldOperation, log.OpCreate, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save investment")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	inv := core.Investment{
		ID:            r.PathValue("id"),
		Symbol:        in.Symbol,
		Name:          in.Name,
		Category:      in.Category,
		Shares:        in.Shares,
		Price:         in.Price,
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  in.PurchaseDate,
	}
	if err := s.ledger.UpdateInvestment(r.Context(), inv); err != nil {
		s.logger.ErrorContext(r.Context(), "Investment update failed",
			log.FieldOperation, log.OpUpdate,
			log.FieldInvestmentID, inv.ID,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save investment")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteInvestment(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Investment delete failed",
			log.FieldOperation, log.OpDelete,
			log.FieldInvestmentID, r.PathValue("id"),
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete investment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req investmentRequest) toInput() (ledger.InvestmentInput, error) {
	date, err := core.ParseDate(req.PurchaseDate)
	if err != nil {
		return ledger.InvestmentInput{}, err
	}
	inv := core.Investment{
		Symbol:        req.Symbol,
		Name:          req.Name,
		Category:      req.Category,
		Shares:        req.Shares,
		Price:         req.Price,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  date,
	}
	if err := inv.Validate(); err != nil {
		return ledger.InvestmentInput{}, err
	}
	return ledger.InvestmentInput{
		Symbol:        inv.Symbol,
		Name:          inv.Name,
		Category:      inv.Category,
		Shares:        inv.Shares,
		Price:         inv.Price,
		PurchasePrice: inv.PurchasePrice,
		PurchaseDate:  inv.PurchaseDate,
	}, nil
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	list := s.ledger.Suggestions()
	if list == nil {
		list = []core.OptimizationSuggestion{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleToggleSuggestion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.ToggleSuggestionImplemented(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Suggestion toggle failed",
			log.FieldOperation, log.OpUpdate,
			log.FieldSuggestionID, id,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save suggestion")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Summary())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearAll(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Clear failed",
			log.FieldOperation, log.OpClear, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to clear data")
		return
	}
	s.adviceCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

type exportResponse struct {
	Exported int `json:"exported"`
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export target not configured")
		return
	}

	transactions := s.ledger.Transactions()
	if err := s.exporter.ExportTransactions(r.Context(), transactions); err != nil {
		s.logger.ErrorContext(r.Context(), "Export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Exported: len(transactions)})
}
