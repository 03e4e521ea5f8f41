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
	FieldEntity     = "entity"
	FieldRecordID   = "id"
	FieldCategory   = "category"
	FieldAmount     = "amount_cents"
	FieldYear       = "year"
	FieldMonth      = "month"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
	ComponentReport  = "report"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpList     = "list"
	OpReplace  = "replace"
	OpDelete   = "delete"
	OpSet      = "set"
	OpAppend   = "append"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
