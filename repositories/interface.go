package repositories

import (
	"time"

	"agent-hub/entities"
)

// AgentRepository owns agent identity records. All mutations go through
// Upsert, which is atomic per agent id.
type AgentRepository interface {
	GetOrCreate(agentID string) entities.AgentIdentity
	Upsert(agentID string, fields entities.IdentityFields) entities.AgentIdentity
	Get(agentID string) (entities.AgentIdentity, bool)
	FindByMac(macAddress, machineName string) (string, bool)
	FindByMachineName(machineName string) (string, bool)
	List(onlineOnly bool, windowMinutes int) []entities.AgentIdentity
	Count() int
}

// CommandQueueRepository keeps one FIFO queue of pending commands per agent.
type CommandQueueRepository interface {
	Enqueue(agentID string, cmd entities.CommandRequest)
	DrainAll(agentID string) []entities.CommandRequest
	IsQueued(commandID string) bool
	Depth() int
}

// ResultRepository maps command ids to their latest result record.
type ResultRepository interface {
	InitializePending(commandID, agentID string, submittedAt time.Time)
	RecordResult(resp entities.CommandResponse) (entities.CommandResponse, error)
	Get(commandID string) (entities.CommandResponse, bool)
}

// SnapshotRepository keeps the latest value reported by each agent.
type SnapshotRepository[T any] interface {
	Put(agentID string, v T)
	Get(agentID string) (T, bool)
}

// MetricsArchiveRepository persists metrics samples outside the process.
type MetricsArchiveRepository interface {
	SaveBatch(records []entities.MetricsRecord) error
}
