package codec

// #region service
// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "paradox.v1.ParadoxService"

// Full method names.
const (
	MethodScore           = "/" + ServiceName + "/Score"
	MethodQueryMemory     = "/" + ServiceName + "/QueryMemory"
	MethodBatchResolve    = "/" + ServiceName + "/BatchResolve"
	MethodArchiveResolved = "/" + ServiceName + "/ArchiveResolved"
	MethodStats           = "/" + ServiceName + "/Stats"
)

// #endregion service

// #region messages
// BatchResolveRequest asks the engine to re-score a set of paradoxes.
type BatchResolveRequest struct {
	SessionID  string   `json:"sessionId,omitempty"`
	ParadoxIDs []string `json:"paradoxIds"`
	Strategy   string   `json:"strategy"`
}

// ArchiveRequest carries no fields.
type ArchiveRequest struct{}

// StatsRequest carries no fields.
type StatsRequest struct{}

// #endregion messages
