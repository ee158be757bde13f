package usecases

import (
	"strings"

	"agent-hub/entities"
	"agent-hub/observability"
	"agent-hub/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registration is what an agent sends when it (re)connects. AgentID may be
// blank; the registry then reconciles the physical identity to an existing
// logical agent or mints a new id.
type Registration struct {
	AgentID string `json:"agentId"`
	entities.IdentityFields
}

type AgentsUseCase struct {
	repo          repositories.AgentRepository
	notify        Notifier
	log           zerolog.Logger
	defaultWindow int
	newID         func() string
}

func NewAgentsUseCase(repo repositories.AgentRepository, n Notifier, log zerolog.Logger, defaultWindowMinutes int) *AgentsUseCase {
	return &AgentsUseCase{
		repo:          repo,
		notify:        orNop(n),
		log:           log,
		defaultWindow: defaultWindowMinutes,
		newID:         func() string { return uuid.New().String() },
	}
}

// Register resolves the logical agent for reg and refreshes its identity.
func (uc *AgentsUseCase) Register(reg *Registration) (entities.AgentIdentity, error) {
	if reg == nil {
		return entities.AgentIdentity{}, entities.Required("registration")
	}

	agentID := strings.TrimSpace(reg.AgentID)
	how := "explicit"
	if agentID == "" {
		agentID, how = uc.Reconcile(reg.IdentityFields)
	}

	agent := uc.repo.Upsert(agentID, reg.IdentityFields)
	observability.IncAgentContact(observability.SourceRegister)
	uc.log.Info().
		Str("agent_id", agentID).
		Str("machine", agent.MachineName).
		Str("resolved_by", how).
		Msg("agent registered")
	uc.notify.Publish(EventAgentUpdated, agent)
	return agent, nil
}

// Reconcile maps a physical identity to an existing agent id: by MAC address
// (narrowed by machine name when given), or by machine name when the MAC is
// missing or all zeros. With no match it returns a fresh id.
func (uc *AgentsUseCase) Reconcile(f entities.IdentityFields) (string, string) {
	usableMac := !entities.IsBlank(f.MacAddress) && !strings.EqualFold(f.MacAddress, entities.ZeroMac)
	if usableMac {
		if id, ok := uc.repo.FindByMac(f.MacAddress, f.MachineName); ok {
			return id, "mac"
		}
	} else if id, ok := uc.repo.FindByMachineName(f.MachineName); ok {
		return id, "machine_name"
	}
	return uc.newID(), "new"
}

// Heartbeat refreshes agentID's identity and last-contact time, creating the
// agent on first contact.
func (uc *AgentsUseCase) Heartbeat(agentID string, f entities.IdentityFields) (entities.AgentIdentity, error) {
	return uc.touch(agentID, f, observability.SourceHeartbeat)
}

// Touch records contact from agentID without identity changes.
func (uc *AgentsUseCase) Touch(agentID, source string) (entities.AgentIdentity, error) {
	return uc.touch(agentID, entities.IdentityFields{}, source)
}

func (uc *AgentsUseCase) touch(agentID string, f entities.IdentityFields, source string) (entities.AgentIdentity, error) {
	if entities.IsBlank(agentID) {
		observability.IncValidationRejection(source)
		uc.log.Warn().Str("source", source).Msg("agent contact rejected: agentId was missing")
		return entities.AgentIdentity{}, entities.Required("agentId")
	}
	agent := uc.repo.Upsert(agentID, f)
	observability.IncAgentContact(source)
	uc.log.Debug().Str("agent_id", agentID).Str("source", source).Msg("agent contact")
	uc.notify.Publish(EventAgentUpdated, agent)
	return agent, nil
}

// List returns known agents. When onlineOnly is set, only agents heard from
// within windowMinutes are returned; a nil window uses the configured
// default.
func (uc *AgentsUseCase) List(onlineOnly bool, windowMinutes *int) []entities.AgentIdentity {
	window := uc.defaultWindow
	if windowMinutes != nil {
		window = *windowMinutes
	}
	return uc.repo.List(onlineOnly, window)
}

func (uc *AgentsUseCase) Get(agentID string) (entities.AgentIdentity, error) {
	agent, ok := uc.repo.Get(agentID)
	if !ok {
		return entities.AgentIdentity{}, entities.ErrNotFound
	}
	return agent, nil
}
