package types

type contextKey string

// Context keys propagated from the HTTP surface into logs and telemetry.
const (
	ContextKeyRequestSource contextKey = "request_source"
	ContextKeyRequestID     contextKey = "request_id"
	ContextKeyClientName    contextKey = "client_name"
)
