package entities

import "time"

// NetworkPortData is the latest open-connection listing from an agent.
// Connection entries are passed through untouched.
type NetworkPortData struct {
	AgentID     string `json:"agentId"`
	Connections []any  `json:"connections"`
}

type InstalledSoftwareData struct {
	AgentID      string    `json:"agentId"`
	Timestamp    time.Time `json:"timestamp"`
	SoftwareList []any     `json:"softwareList"`
}
