package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldCampaignID is the campaign identifier
	FieldCampaignID = "campaign_id"

	// FieldAgent is the pipeline stage (agent kind) name
	FieldAgent = "agent"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Standard metric fields used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldAttempt is the retry attempt number for external calls
	FieldAttempt = "attempt"
)
