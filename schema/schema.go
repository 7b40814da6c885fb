// Package schema declares the fixed column orders, enum vocabularies,
// and typed records for every sheet the orchestrator reads and writes,
// plus the positional codec between row arrays and records.
package schema

// Sheet names, part of the external contract (spec.md §6).
const (
	WorkersSheet = "Workers"

	SourcesSheet        = "Sources"
	SourcesHistorySheet = "Sources History"
	SourcesDLQSheet     = "Sources DLQ"

	TasksSheet        = "Tasks"
	TasksHistorySheet = "Tasks History"
	TasksDLQSheet     = "Tasks DLQ"

	LeaderElectionSheet = "Leader Election"
)

// WorkerStatus enumerates Worker.status.
type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "ACTIVE"
	WorkerInactive WorkerStatus = "INACTIVE"
	WorkerUnknown  WorkerStatus = "UNKNOWN"
)

// PipelineStatus enumerates Source.status and Task.status.
type PipelineStatus string

const (
	Pending PipelineStatus = "PENDING"
	Claimed PipelineStatus = "CLAIMED"
	Done    PipelineStatus = "DONE"
	Failed  PipelineStatus = "FAILED"
	Unknown PipelineStatus = "UNKNOWN"
)

// WorkersHeader is the fixed column order for the Workers sheet.
var WorkersHeader = []string{
	"worker_id", "worker_name", "last_heartbeat", "status",
	"tasks_processed", "sources_processed",
}

// SourcesHeader is the fixed column order shared by Sources,
// Sources History, and Sources DLQ (DLQ appends a trailing error cell).
var SourcesHeader = []string{
	"id", "url", "name", "video_count", "claimed_at", "completed_at",
	"status", "assigned_worker",
}

// SourcesDLQHeader is SourcesHeader with a trailing error column.
var SourcesDLQHeader = append(append([]string{}, SourcesHeader...), "error")

// TasksHeader is the fixed column order shared by Tasks, Tasks History,
// and Tasks DLQ (DLQ appends a trailing error cell).
var TasksHeader = []string{
	"id", "source_id", "url", "name", "duration", "created_at",
	"claimed_at", "completed_at", "status", "assigned_worker",
}

// TasksDLQHeader is TasksHeader with a trailing error column.
var TasksDLQHeader = append(append([]string{}, TasksHeader...), "error")

// LeaderElectionHeader is the fixed column order for the Leader
// Election sheet.
var LeaderElectionHeader = []string{"election_name", "holder", "expires_at"}

// decodeWorkerStatus returns the sentinel UNKNOWN for any value not in
// the enum, per spec.md §4.2.
func decodeWorkerStatus(s string) WorkerStatus {
	switch WorkerStatus(s) {
	case WorkerActive, WorkerInactive:
		return WorkerStatus(s)
	default:
		return WorkerUnknown
	}
}

func decodePipelineStatus(s string) PipelineStatus {
	switch PipelineStatus(s) {
	case Pending, Claimed, Done, Failed:
		return PipelineStatus(s)
	default:
		return Unknown
	}
}

// cell returns row[i], or "" if the row is too short. Missing trailing
// columns are padded on decode, per spec.md §4.2.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
