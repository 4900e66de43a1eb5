package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldAccount   = "account"
	FieldMonth     = "month"
	FieldBackend   = "backend"
	FieldTable     = "table"
	FieldKind      = "kind"
	FieldExchange  = "exchange"
	FieldQueue     = "queue"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldError     = "error"
	FieldOperation = "operation"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentTracker = "tracker"
	ComponentStore   = "store"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentSQLite  = "sqlite"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpUpsert   = "upsert"
	OpDelete   = "delete"
	OpFlush    = "flush"
	OpSync     = "sync"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
