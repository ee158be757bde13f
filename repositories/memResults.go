package repositories

import (
	"sync"
	"time"

	"agent-hub/entities"
)

type resultMemRepository struct {
	results sync.Map // commandID -> entities.CommandResponse
	now     func() time.Time
}

func NewResultMemRepository(now func() time.Time) ResultRepository {
	if now == nil {
		now = time.Now
	}
	return &resultMemRepository{now: now}
}

// InitializePending stores the placeholder for a newly submitted command,
// replacing any previous record under the same id.
func (r *resultMemRepository) InitializePending(commandID, agentID string, submittedAt time.Time) {
	r.results.Store(commandID, entities.PendingResponse(commandID, agentID, submittedAt))
}

// RecordResult validates and normalizes resp, then overwrites the stored
// record wholesale. Last writer wins.
func (r *resultMemRepository) RecordResult(resp entities.CommandResponse) (entities.CommandResponse, error) {
	if err := resp.Validate(); err != nil {
		return entities.CommandResponse{}, err
	}
	resp.Normalize(r.now().UTC())
	r.results.Store(resp.CommandID, resp)
	return resp, nil
}

func (r *resultMemRepository) Get(commandID string) (entities.CommandResponse, bool) {
	v, ok := r.results.Load(commandID)
	if !ok {
		return entities.CommandResponse{}, false
	}
	return v.(entities.CommandResponse), true
}
