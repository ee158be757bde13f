package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcessInfo struct {
	Name        string  `json:"name"`
	ID          int     `json:"id"`
	CPUUsage    float64 `json:"cpuUsage"`
	MemoryUsage float64 `json:"memoryUsage"`
}

// SystemMetrics is one resource sample pushed by an agent.
type SystemMetrics struct {
	AgentID         string        `json:"agentId"`
	Timestamp       time.Time     `json:"timestamp"`
	CPUUsage        float64       `json:"cpuUsage"`
	MemoryUsage     float64       `json:"memoryUsage"`
	DiskUsage       float64       `json:"diskUsage"`
	NetworkSent     int64         `json:"networkSent"`
	NetworkReceived int64         `json:"networkReceived"`
	TopProcesses    []ProcessInfo `json:"topProcesses"`
}

// MetricsRecord is the archived form of a SystemMetrics sample.
type MetricsRecord struct {
	ID              string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AgentID         string         `gorm:"index;type:varchar(191)" json:"agentId"`
	SampledAt       time.Time      `gorm:"index" json:"sampledAt"`
	CPUUsage        float64        `json:"cpuUsage"`
	MemoryUsage     float64        `json:"memoryUsage"`
	DiskUsage       float64        `json:"diskUsage"`
	NetworkSent     int64          `json:"networkSent"`
	NetworkReceived int64          `json:"networkReceived"`
	CreatedAt       time.Time      `json:"createdAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *MetricsRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC()
	return nil
}

// NewMetricsRecord flattens a sample for archiving; process lists are not kept.
func NewMetricsRecord(m SystemMetrics) MetricsRecord {
	return MetricsRecord{
		AgentID:         m.AgentID,
		SampledAt:       m.Timestamp.UTC(),
		CPUUsage:        m.CPUUsage,
		MemoryUsage:     m.MemoryUsage,
		DiskUsage:       m.DiskUsage,
		NetworkSent:     m.NetworkSent,
		NetworkReceived: m.NetworkReceived,
	}
}
