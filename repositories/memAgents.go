package repositories

import (
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"agent-hub/entities"
)

// agentEntry guards one identity record. Entries are published into the map
// before they are initialised; readers skip entries that are not ready yet.
type agentEntry struct {
	mu       sync.Mutex
	ready    bool
	identity entities.AgentIdentity
	// namedByAgent is set once the agent reported its own machine name;
	// until then MachineName holds the hub's default.
	namedByAgent bool
}

type agentMemRepository struct {
	agents   sync.Map // agentID -> *agentEntry
	count    atomic.Int64
	defaults entities.IdentityFields
	now      func() time.Time
}

// AgentMemOption configures the in-memory registry.
type AgentMemOption func(*agentMemRepository)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) AgentMemOption {
	return func(r *agentMemRepository) { r.now = now }
}

// WithDefaults sets the values used for fields a new agent did not report.
func WithDefaults(d entities.IdentityFields) AgentMemOption {
	return func(r *agentMemRepository) { r.defaults = d }
}

func NewAgentMemRepository(opts ...AgentMemOption) AgentRepository {
	r := &agentMemRepository{
		defaults: LocalDefaults(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LocalDefaults describes the host the server runs on. New agents that did
// not report a value get these.
func LocalDefaults() entities.IdentityFields {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return entities.IdentityFields{
		MachineName:     host,
		IPAddress:       "127.0.0.1",
		MacAddress:      entities.ZeroMac,
		OperatingSystem: runtime.GOOS,
	}
}

func (r *agentMemRepository) entry(agentID string) *agentEntry {
	if e, ok := r.agents.Load(agentID); ok {
		return e.(*agentEntry)
	}
	e, _ := r.agents.LoadOrStore(agentID, &agentEntry{})
	return e.(*agentEntry)
}

// create initialises e. Callers hold e.mu.
func (r *agentMemRepository) create(e *agentEntry, agentID string, fields entities.IdentityFields) {
	base := entities.AgentIdentity{
		ID:              agentID,
		MachineName:     r.defaults.MachineName,
		IPAddress:       r.defaults.IPAddress,
		MacAddress:      r.defaults.MacAddress,
		OperatingSystem: r.defaults.OperatingSystem,
	}
	e.identity = base.Merge(fields)
	e.namedByAgent = !entities.IsBlank(fields.MachineName)
	hb := r.now().UTC()
	e.identity.LastHeartbeat = &hb
	e.ready = true
	r.count.Add(1)
}

func (r *agentMemRepository) GetOrCreate(agentID string) entities.AgentIdentity {
	e := r.entry(agentID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		r.create(e, agentID, entities.IdentityFields{})
	}
	return e.identity.Clone()
}

func (r *agentMemRepository) Upsert(agentID string, fields entities.IdentityFields) entities.AgentIdentity {
	e := r.entry(agentID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		r.create(e, agentID, fields)
		return e.identity.Clone()
	}

	merged := e.identity.Merge(fields)
	hb := r.now().UTC()
	// heartbeats are strictly increasing per agent
	if prev := e.identity.LastHeartbeat; prev != nil && !hb.After(*prev) {
		hb = prev.Add(time.Nanosecond)
	}
	merged.LastHeartbeat = &hb
	e.identity = merged
	if !entities.IsBlank(fields.MachineName) {
		e.namedByAgent = true
	}
	return e.identity.Clone()
}

func (r *agentMemRepository) Get(agentID string) (entities.AgentIdentity, bool) {
	v, ok := r.agents.Load(agentID)
	if !ok {
		return entities.AgentIdentity{}, false
	}
	return snapshot(v.(*agentEntry))
}

// snapshot returns a copy of the entry's identity if it is initialised.
func snapshot(e *agentEntry) (entities.AgentIdentity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return entities.AgentIdentity{}, false
	}
	return e.identity.Clone(), true
}

// each calls fn for every initialised agent until fn returns false.
// Iteration order is unspecified.
func (r *agentMemRepository) each(fn func(entities.AgentIdentity) bool) {
	r.agents.Range(func(_, v any) bool {
		a, ok := snapshot(v.(*agentEntry))
		if !ok {
			return true
		}
		return fn(a)
	})
}

func (r *agentMemRepository) FindByMac(macAddress, machineName string) (string, bool) {
	if entities.IsBlank(macAddress) {
		return "", false
	}
	var found string
	r.each(func(a entities.AgentIdentity) bool {
		if !strings.EqualFold(a.MacAddress, macAddress) {
			return true
		}
		if !entities.IsBlank(machineName) && !strings.EqualFold(a.MachineName, machineName) {
			return true
		}
		found = a.ID
		return false
	})
	return found, found != ""
}

// FindByMachineName only matches names reported by the agents themselves.
// Agents created by telemetry alone carry the default name and are skipped.
func (r *agentMemRepository) FindByMachineName(machineName string) (string, bool) {
	if entities.IsBlank(machineName) {
		return "", false
	}
	var found string
	r.agents.Range(func(_, v any) bool {
		e := v.(*agentEntry)
		e.mu.Lock()
		if e.ready && e.namedByAgent && strings.EqualFold(e.identity.MachineName, machineName) {
			found = e.identity.ID
		}
		e.mu.Unlock()
		return found == ""
	})
	return found, found != ""
}

func (r *agentMemRepository) List(onlineOnly bool, windowMinutes int) []entities.AgentIdentity {
	if windowMinutes < 0 {
		windowMinutes = -windowMinutes
	}
	cutoff := r.now().UTC().Add(-time.Duration(windowMinutes) * time.Minute)

	list := make([]entities.AgentIdentity, 0, r.Count())
	r.each(func(a entities.AgentIdentity) bool {
		if !onlineOnly || a.OnlineSince(cutoff) {
			list = append(list, a)
		}
		return true
	})
	return list
}

func (r *agentMemRepository) Count() int {
	return int(r.count.Load())
}
