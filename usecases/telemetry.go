package usecases

import (
	"time"

	"agent-hub/cache"
	"agent-hub/entities"
	"agent-hub/observability"
	"agent-hub/repositories"

	"github.com/rs/zerolog"
)

// TelemetryUseCase stores the latest snapshots agents push (metrics, network
// ports, installed software). Every push counts as agent contact. Lookups for
// agents that never reported return empty results, not errors.
type TelemetryUseCase struct {
	agents   *AgentsUseCase
	metrics  repositories.SnapshotRepository[entities.SystemMetrics]
	ports    repositories.SnapshotRepository[[]any]
	software repositories.SnapshotRepository[entities.InstalledSoftwareData]
	history  *cache.MetricsCache
	notify   Notifier
	log      zerolog.Logger
	now      func() time.Time
}

type TelemetryStores struct {
	Metrics  repositories.SnapshotRepository[entities.SystemMetrics]
	Ports    repositories.SnapshotRepository[[]any]
	Software repositories.SnapshotRepository[entities.InstalledSoftwareData]
	History  *cache.MetricsCache
}

func NewTelemetryUseCase(agents *AgentsUseCase, stores TelemetryStores, n Notifier, log zerolog.Logger) *TelemetryUseCase {
	return &TelemetryUseCase{
		agents:   agents,
		metrics:  stores.Metrics,
		ports:    stores.Ports,
		software: stores.Software,
		history:  stores.History,
		notify:   orNop(n),
		log:      log,
		now:      time.Now,
	}
}

// PushMetrics records the latest sample for the agent and appends it to the
// history cache.
func (uc *TelemetryUseCase) PushMetrics(m *entities.SystemMetrics) error {
	if m == nil {
		return entities.Required("metrics")
	}
	if _, err := uc.agents.Touch(m.AgentID, observability.SourceMetrics); err != nil {
		return err
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = uc.now()
	}
	m.Timestamp = m.Timestamp.UTC()
	if m.TopProcesses == nil {
		m.TopProcesses = []entities.ProcessInfo{}
	}

	uc.metrics.Put(m.AgentID, *m)
	uc.history.AddDataPoint(*m)
	uc.notify.Publish(EventMetricsUpdated, m)
	return nil
}

func (uc *TelemetryUseCase) LatestMetrics(agentID string) (entities.SystemMetrics, bool) {
	return uc.metrics.Get(agentID)
}

func (uc *TelemetryUseCase) MetricsSummary(agentID string) cache.Summary {
	return uc.history.Summary(agentID)
}

func (uc *TelemetryUseCase) MetricsTrend(agentID string) []cache.TrendPoint {
	return uc.history.Trend(agentID)
}

// SubmitNetworkPorts replaces the agent's connection listing.
func (uc *TelemetryUseCase) SubmitNetworkPorts(data *entities.NetworkPortData) error {
	if data == nil {
		return entities.Required("agentId")
	}
	if _, err := uc.agents.Touch(data.AgentID, observability.SourcePorts); err != nil {
		return err
	}
	conns := data.Connections
	if conns == nil {
		conns = []any{}
	}
	uc.ports.Put(data.AgentID, conns)
	uc.log.Debug().Str("agent_id", data.AgentID).Int("connections", len(conns)).Msg("stored network ports")
	return nil
}

func (uc *TelemetryUseCase) NetworkPorts(agentID string) []any {
	if conns, ok := uc.ports.Get(agentID); ok {
		return conns
	}
	return []any{}
}

// SubmitInstalledSoftware replaces the agent's software inventory.
func (uc *TelemetryUseCase) SubmitInstalledSoftware(data *entities.InstalledSoftwareData) error {
	if data == nil {
		return entities.Required("agentId")
	}
	if _, err := uc.agents.Touch(data.AgentID, observability.SourceSoftware); err != nil {
		return err
	}
	if data.Timestamp.IsZero() {
		data.Timestamp = uc.now()
	}
	data.Timestamp = data.Timestamp.UTC()
	if data.SoftwareList == nil {
		data.SoftwareList = []any{}
	}
	uc.software.Put(data.AgentID, *data)
	uc.log.Debug().Str("agent_id", data.AgentID).Int("packages", len(data.SoftwareList)).Msg("stored installed software")
	return nil
}

// InstalledSoftware returns the latest inventory, or an empty one stamped
// with the zero time when the agent never reported.
func (uc *TelemetryUseCase) InstalledSoftware(agentID string) (entities.InstalledSoftwareData, bool) {
	if data, ok := uc.software.Get(agentID); ok {
		return data, true
	}
	return entities.InstalledSoftwareData{AgentID: agentID, SoftwareList: []any{}}, false
}
