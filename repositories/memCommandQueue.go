package repositories

import (
	"strings"
	"sync"
	"sync/atomic"

	"agent-hub/entities"
)

type agentQueue struct {
	mu    sync.Mutex
	items []entities.CommandRequest
}

type commandQueueMemRepository struct {
	queues sync.Map // agentID -> *agentQueue
	depth  atomic.Int64
}

func NewCommandQueueMemRepository() CommandQueueRepository {
	return &commandQueueMemRepository{}
}

func (r *commandQueueMemRepository) queue(agentID string) *agentQueue {
	if q, ok := r.queues.Load(agentID); ok {
		return q.(*agentQueue)
	}
	q, _ := r.queues.LoadOrStore(agentID, &agentQueue{})
	return q.(*agentQueue)
}

// Enqueue appends cmd to the tail of the agent's queue. There is no capacity
// bound and no reordering by priority.
func (r *commandQueueMemRepository) Enqueue(agentID string, cmd entities.CommandRequest) {
	q := r.queue(agentID)
	q.mu.Lock()
	q.items = append(q.items, cmd.Clone())
	r.depth.Add(1)
	q.mu.Unlock()
}

// DrainAll swaps the agent's queue for an empty one and returns the old
// contents in FIFO order. Each command is returned to exactly one caller.
func (r *commandQueueMemRepository) DrainAll(agentID string) []entities.CommandRequest {
	v, ok := r.queues.Load(agentID)
	if !ok {
		return []entities.CommandRequest{}
	}
	q := v.(*agentQueue)
	q.mu.Lock()
	items := q.items
	q.items = nil
	r.depth.Add(-int64(len(items)))
	q.mu.Unlock()

	if items == nil {
		return []entities.CommandRequest{}
	}
	return items
}

// IsQueued scans every queue for commandID, compared case-insensitively.
// Queues are locked one at a time.
func (r *commandQueueMemRepository) IsQueued(commandID string) bool {
	if entities.IsBlank(commandID) {
		return false
	}
	found := false
	r.queues.Range(func(_, v any) bool {
		q := v.(*agentQueue)
		q.mu.Lock()
		for _, cmd := range q.items {
			if strings.EqualFold(cmd.CommandID, commandID) {
				found = true
				break
			}
		}
		q.mu.Unlock()
		return !found
	})
	return found
}

func (r *commandQueueMemRepository) Depth() int {
	return int(r.depth.Load())
}
