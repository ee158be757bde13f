package entities

import (
	"maps"
	"strings"
	"time"
)

// Command result statuses.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

// CommandRequest is a unit of work queued for one agent.
// Priority and TimeoutSeconds are carried for the agent; dispatch order is FIFO.
type CommandRequest struct {
	CommandID           string            `json:"commandId"`
	TargetAgentID       string            `json:"targetAgentId"`
	CommandType         int               `json:"commandType"`
	Parameters          map[string]string `json:"parameters"`
	Timestamp           time.Time         `json:"timestamp"`
	Priority            int               `json:"priority"`
	TimeoutSeconds      int               `json:"timeoutSeconds"`
	RequireConfirmation bool              `json:"requireConfirmation"`
}

// CommandResponse is the result record for a command, keyed by CommandID.
type CommandResponse struct {
	CommandID       string    `json:"commandId"`
	AgentID         string    `json:"agentId"`
	Status          string    `json:"status"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
	Output          string    `json:"output"`
	ErrorOutput     string    `json:"errorOutput"`
	ExitCode        int       `json:"exitCode"`
}

// Validate checks the fields an agent must supply with a result.
func (r *CommandResponse) Validate() error {
	if r == nil || IsBlank(r.CommandID) {
		return Required("commandId")
	}
	if IsBlank(r.AgentID) {
		return Required("agentId")
	}
	return nil
}

// Normalize fills defaults on a submitted result: a blank status becomes
// Completed, times are moved to UTC (end defaults to now, start to end) and a
// non-positive duration is derived from the two times, floored at zero.
func (r *CommandResponse) Normalize(now time.Time) {
	if IsBlank(r.Status) {
		r.Status = StatusCompleted
	} else {
		r.Status = CanonicalStatus(r.Status)
	}
	if r.EndTime.IsZero() {
		r.EndTime = now
	}
	r.EndTime = r.EndTime.UTC()
	if r.StartTime.IsZero() {
		r.StartTime = r.EndTime
	}
	r.StartTime = r.StartTime.UTC()
	if r.ExecutionTimeMs <= 0 {
		r.ExecutionTimeMs = max(0, r.EndTime.Sub(r.StartTime).Milliseconds())
	}
}

// CanonicalStatus maps known statuses to their canonical spelling and
// returns anything else unchanged.
func CanonicalStatus(s string) string {
	for _, known := range []string{StatusPending, StatusCompleted, StatusFailed} {
		if strings.EqualFold(strings.TrimSpace(s), known) {
			return known
		}
	}
	return s
}

// IsKnownStatus reports whether s is one of the closed set of statuses.
func IsKnownStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// PendingResponse is the placeholder stored when a command is submitted.
func PendingResponse(commandID, agentID string, submittedAt time.Time) CommandResponse {
	return CommandResponse{
		CommandID: commandID,
		AgentID:   agentID,
		Status:    StatusPending,
		StartTime: submittedAt,
		EndTime:   submittedAt,
	}
}

// Clone copies the request, including its parameter map.
func (c CommandRequest) Clone() CommandRequest {
	c.Parameters = maps.Clone(c.Parameters)
	return c
}
