package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Tracing fields, propagated through the context.
const (
	FieldRequestID = "request_id"
	FieldTrainID   = "train_id"
	FieldComponent = "component"
	FieldSource    = "source"
	FieldSnapshot  = "snapshot"
	FieldClusterID = "cluster_id"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
	FieldSize       = "size"
)
