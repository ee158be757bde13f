package usecases

import (
	"time"

	"agent-hub/entities"
	"agent-hub/observability"
	"agent-hub/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatusKind classifies the outcome of a command status lookup.
type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusFound
	StatusStillPending
)

func (k StatusKind) String() string {
	switch k {
	case StatusFound:
		return "found"
	case StatusStillPending:
		return "pending"
	default:
		return "unknown"
	}
}

// CommandStatus is the answer to "what happened to command X".
// Response is set whenever a result record exists, including the Pending
// placeholder.
type CommandStatus struct {
	Kind     StatusKind
	Response *entities.CommandResponse
}

// DispatchUseCase ties command submission, agent polling and result
// reporting together.
//
// Submission writes the queue and then the result placeholder as two
// separate steps. A crash between them can leave a queued command with no
// placeholder; that gap is accepted.
type DispatchUseCase struct {
	queue   repositories.CommandQueueRepository
	results repositories.ResultRepository
	notify  Notifier
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

func NewDispatchUseCase(q repositories.CommandQueueRepository, r repositories.ResultRepository, n Notifier, log zerolog.Logger) *DispatchUseCase {
	return &DispatchUseCase{
		queue:   q,
		results: r,
		notify:  orNop(n),
		log:     log,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Submit validates and normalizes cmd, queues it for its target agent and
// records a Pending placeholder. It returns the command id, generated when
// the caller left it blank.
func (uc *DispatchUseCase) Submit(cmd *entities.CommandRequest) (string, error) {
	if cmd == nil {
		uc.reject("submit", "command payload was missing")
		return "", entities.Required("command")
	}
	if entities.IsBlank(cmd.TargetAgentID) {
		uc.reject("submit", "targetAgentId was missing")
		return "", entities.Required("targetAgentId")
	}

	if entities.IsBlank(cmd.CommandID) {
		cmd.CommandID = uc.newID()
	}
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = uc.now()
	}
	cmd.Timestamp = cmd.Timestamp.UTC()
	if cmd.Parameters == nil {
		cmd.Parameters = map[string]string{}
	}

	uc.queue.Enqueue(cmd.TargetAgentID, *cmd)
	uc.results.InitializePending(cmd.CommandID, cmd.TargetAgentID, cmd.Timestamp)

	observability.IncCommandSubmitted()
	uc.log.Info().
		Str("command_id", cmd.CommandID).
		Int("command_type", cmd.CommandType).
		Str("agent_id", cmd.TargetAgentID).
		Msg("queued command")
	uc.notify.Publish(EventCommandQueued, map[string]any{
		"commandId":     cmd.CommandID,
		"targetAgentId": cmd.TargetAgentID,
		"commandType":   cmd.CommandType,
		"timestamp":     cmd.Timestamp,
	})
	return cmd.CommandID, nil
}

// Poll removes and returns every command queued for agentID in FIFO order.
// A command handed out here is never delivered again.
func (uc *DispatchUseCase) Poll(agentID string) ([]entities.CommandRequest, error) {
	if entities.IsBlank(agentID) {
		uc.reject("poll", "agentId was missing")
		return nil, entities.Required("agentId")
	}

	cmds := uc.queue.DrainAll(agentID)
	if len(cmds) == 0 {
		return cmds, nil
	}

	observability.AddCommandsDelivered(len(cmds))
	uc.log.Info().Int("command_count", len(cmds)).Str("agent_id", agentID).Msg("delivered pending commands")

	ids := make([]string, 0, len(cmds))
	for _, c := range cmds {
		ids = append(ids, c.CommandID)
	}
	uc.notify.Publish(EventCommandsDelivered, map[string]any{
		"agentId":    agentID,
		"commandIds": ids,
	})
	return cmds, nil
}

// GetStatus looks up the result table first, then the queues, so a command
// that was queued but has no record yet is reported as pending rather than
// unknown.
func (uc *DispatchUseCase) GetStatus(commandID string) CommandStatus {
	if resp, ok := uc.results.Get(commandID); ok {
		uc.log.Debug().Str("command_id", commandID).Str("status", resp.Status).Msg("returning stored result")
		if resp.Status == entities.StatusPending {
			return CommandStatus{Kind: StatusStillPending, Response: &resp}
		}
		return CommandStatus{Kind: StatusFound, Response: &resp}
	}
	if uc.queue.IsQueued(commandID) {
		return CommandStatus{Kind: StatusStillPending}
	}
	return CommandStatus{Kind: StatusUnknown}
}

// ReportResult stores the final outcome an agent reports for a command.
func (uc *DispatchUseCase) ReportResult(resp *entities.CommandResponse) (entities.CommandResponse, error) {
	if err := resp.Validate(); err != nil {
		uc.reject("result", err.Error())
		return entities.CommandResponse{}, err
	}

	stored, err := uc.results.RecordResult(*resp)
	if err != nil {
		return entities.CommandResponse{}, err
	}
	label := stored.Status
	if !entities.IsKnownStatus(stored.Status) {
		label = "other"
		uc.log.Warn().Str("command_id", stored.CommandID).Str("status", stored.Status).Msg("result has unrecognised status")
	}

	observability.IncCommandResult(label)
	uc.log.Info().Str("command_id", stored.CommandID).Str("status", stored.Status).Msg("stored command result")
	uc.notify.Publish(EventCommandResult, stored)
	return stored, nil
}

func (uc *DispatchUseCase) reject(operation, reason string) {
	observability.IncValidationRejection(operation)
	uc.log.Warn().Str("operation", operation).Msgf("request rejected: %s", reason)
}
