package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldBatchID is the import batch ID
	FieldBatchID = "batch_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSource is the import source identifier (stockx, alias, ...)
	FieldSource = "source"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldRow is the 1-based row number within a batch
	FieldRow = "row"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSize is a payload size in bytes
	FieldSize = "size"
)
