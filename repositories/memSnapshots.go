package repositories

import "sync"

type snapshotMemRepository[T any] struct {
	latest sync.Map // agentID -> T
}

func NewSnapshotMemRepository[T any]() SnapshotRepository[T] {
	return &snapshotMemRepository[T]{}
}

func (r *snapshotMemRepository[T]) Put(agentID string, v T) {
	r.latest.Store(agentID, v)
}

func (r *snapshotMemRepository[T]) Get(agentID string) (T, bool) {
	v, ok := r.latest.Load(agentID)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}
