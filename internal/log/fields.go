package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldAccountUID = "account_uid"
	FieldCategory   = "category"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldCount      = "count"
	FieldDate       = "date"
	FieldNetWorth   = "net_worth"
	FieldAttempt    = "attempt"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentBank     = "bank"
	ComponentBroker   = "broker"
	ComponentStorage  = "storage"
	ComponentIngest   = "ingest"
	ComponentSnapshot = "snapshot"
	ComponentEvents   = "events"
	ComponentCache    = "cache"
)
