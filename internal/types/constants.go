package types

// Status is the liveness of a host derived from how long ago it last reported.
type Status string

const (
	StatusOnline  Status = "online"
	StatusWarning Status = "warning"
	StatusOffline Status = "offline"
)

// Service states an agent may report.
const (
	ServiceRunning = "running"
	ServiceStopped = "stopped"
	ServiceUnknown = "unknown"
)

const (
	ContextRequestIDKey = "request_id"
	ContextPrincipalKey = "principal"
)

// RegistryKeyPrefix namespaces host registrations in the key-value store.
const RegistryKeyPrefix = "server:"

// Event is pushed to live dashboard clients when fleet state changes.
type Event struct {
	Type      string `json:"type"`
	IP        string `json:"ip,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const (
	EventReport  = "refresh"
	EventDeleted = "deleted"
)
