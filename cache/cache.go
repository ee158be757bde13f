package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"agent-hub/entities"
)

type MetricsPoint struct {
	Metrics  entities.SystemMetrics
	CachedAt time.Time
}

// TrendPoint is the reduced form of a sample returned by trend queries.
type TrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	CPUUsage    float64   `json:"cpuUsage"`
	MemoryUsage float64   `json:"memoryUsage"`
	DiskUsage   float64   `json:"diskUsage"`
}

// Summary averages the cached samples of one agent.
type Summary struct {
	AgentID   string     `json:"agentId"`
	Samples   int        `json:"samples"`
	AvgCPU    float64    `json:"avgCpu"`
	AvgMemory float64    `json:"avgMemory"`
	AvgDisk   float64    `json:"avgDisk"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
}

type Stats struct {
	TotalAgents     int `json:"totalAgents"`
	TotalPoints     int `json:"totalPoints"`
	UnarchivedCount int `json:"unarchivedPoints"`
	MaxPoints       int `json:"maxPointsPerAgent"`
}

type agentHistory struct {
	mu         sync.Mutex
	points     []MetricsPoint
	unarchived []entities.SystemMetrics
}

// MetricsCache keeps the most recent samples per agent, plus the samples
// not yet handed to the archive. Both are bounded by maxPoints per agent;
// the oldest samples are dropped first.
type MetricsCache struct {
	agents    sync.Map // agentID -> *agentHistory
	count     atomic.Int64
	maxPoints int
	now       func() time.Time
}

func NewMetricsCache(maxPoints int) *MetricsCache {
	if maxPoints <= 0 {
		maxPoints = 720
	}
	return &MetricsCache{maxPoints: maxPoints, now: time.Now}
}

func (mc *MetricsCache) history(agentID string) *agentHistory {
	if h, ok := mc.agents.Load(agentID); ok {
		return h.(*agentHistory)
	}
	h, loaded := mc.agents.LoadOrStore(agentID, &agentHistory{})
	if !loaded {
		mc.count.Add(1)
	}
	return h.(*agentHistory)
}

// AddDataPoint appends a sample to its agent's history.
func (mc *MetricsCache) AddDataPoint(m entities.SystemMetrics) {
	h := mc.history(m.AgentID)
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points = trim(append(h.points, MetricsPoint{Metrics: m, CachedAt: mc.now()}), mc.maxPoints)
	h.unarchived = trim(append(h.unarchived, m), mc.maxPoints)
}

func trim[T any](s []T, limit int) []T {
	if over := len(s) - limit; over > 0 {
		return append(s[:0:0], s[over:]...)
	}
	return s
}

// History returns a copy of the cached samples for agentID, oldest first.
func (mc *MetricsCache) History(agentID string) []MetricsPoint {
	v, ok := mc.agents.Load(agentID)
	if !ok {
		return []MetricsPoint{}
	}
	h := v.(*agentHistory)
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]MetricsPoint, len(h.points))
	copy(out, h.points)
	return out
}

func (mc *MetricsCache) Trend(agentID string) []TrendPoint {
	points := mc.History(agentID)
	trend := make([]TrendPoint, 0, len(points))
	for _, p := range points {
		trend = append(trend, TrendPoint{
			Timestamp:   p.Metrics.Timestamp,
			CPUUsage:    p.Metrics.CPUUsage,
			MemoryUsage: p.Metrics.MemoryUsage,
			DiskUsage:   p.Metrics.DiskUsage,
		})
	}
	return trend
}

// Summary averages cached samples. An agent with no samples gets zeros.
func (mc *MetricsCache) Summary(agentID string) Summary {
	points := mc.History(agentID)
	s := Summary{AgentID: agentID, Samples: len(points)}
	if len(points) == 0 {
		return s
	}
	for _, p := range points {
		s.AvgCPU += p.Metrics.CPUUsage
		s.AvgMemory += p.Metrics.MemoryUsage
		s.AvgDisk += p.Metrics.DiskUsage
	}
	n := float64(len(points))
	s.AvgCPU /= n
	s.AvgMemory /= n
	s.AvgDisk /= n
	from, to := points[0].Metrics.Timestamp, points[len(points)-1].Metrics.Timestamp
	s.From, s.To = &from, &to
	return s
}

// DrainUnarchived removes and returns every sample not yet archived.
func (mc *MetricsCache) DrainUnarchived() []entities.SystemMetrics {
	var out []entities.SystemMetrics
	mc.agents.Range(func(_, v any) bool {
		h := v.(*agentHistory)
		h.mu.Lock()
		out = append(out, h.unarchived...)
		h.unarchived = nil
		h.mu.Unlock()
		return true
	})
	return out
}

// Requeue puts samples back after a failed archive attempt, ahead of any
// samples that arrived in the meantime.
func (mc *MetricsCache) Requeue(samples []entities.SystemMetrics) {
	byAgent := make(map[string][]entities.SystemMetrics)
	for _, m := range samples {
		byAgent[m.AgentID] = append(byAgent[m.AgentID], m)
	}
	for agentID, ms := range byAgent {
		h := mc.history(agentID)
		h.mu.Lock()
		h.unarchived = trim(append(ms, h.unarchived...), mc.maxPoints)
		h.mu.Unlock()
	}
}

// GetCacheStats returns statistics about the current cache.
func (mc *MetricsCache) GetCacheStats() Stats {
	st := Stats{TotalAgents: int(mc.count.Load()), MaxPoints: mc.maxPoints}
	mc.agents.Range(func(_, v any) bool {
		h := v.(*agentHistory)
		h.mu.Lock()
		st.TotalPoints += len(h.points)
		st.UnarchivedCount += len(h.unarchived)
		h.mu.Unlock()
		return true
	})
	return st
}
