package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldTransactionID = "transaction_id"
	FieldBudgetID      = "budget_id"
	FieldInvestmentID  = "investment_id"
	FieldSuggestionID  = "suggestion_id"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldCollection    = "collection"
	FieldKey           = "key"
	FieldCount         = "count"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentAdvisor   = "advisor"
	ComponentOptimizer = "optimizer"
	ComponentBlob      = "blob"
	ComponentEvents    = "events"
	ComponentExport    = "export"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpPersist  = "persist"
	OpLoad     = "load"
	OpClear    = "clear"
	OpGenerate = "generate"
	OpExport   = "export"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
