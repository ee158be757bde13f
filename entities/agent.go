package entities

import (
	"strings"
	"time"
)

// AgentIdentity is the registry record for one logical agent.
// ID never changes once assigned; the other fields are refreshed on contact.
type AgentIdentity struct {
	ID              string     `json:"id"`
	MachineName     string     `json:"machineName"`
	IPAddress       string     `json:"ipAddress"`
	MacAddress      string     `json:"macAddress"`
	OperatingSystem string     `json:"operatingSystem"`
	LastHeartbeat   *time.Time `json:"lastHeartbeat,omitempty"`
	Location        string     `json:"location,omitempty"`
}

// IdentityFields carries the optional identity values an agent reports.
// Blank values mean "not reported".
type IdentityFields struct {
	MachineName     string `json:"machineName"`
	IPAddress       string `json:"ipAddress"`
	MacAddress      string `json:"macAddress"`
	OperatingSystem string `json:"operatingSystem"`
	Location        string `json:"location"`
}

// ZeroMac is what agents report when no usable interface was found.
const ZeroMac = "00:00:00:00:00:00"

// Merge returns a copy of a with every non-blank field of f applied.
// Blank incoming values never clear a stored value.
func (a AgentIdentity) Merge(f IdentityFields) AgentIdentity {
	if !IsBlank(f.MachineName) {
		a.MachineName = f.MachineName
	}
	if !IsBlank(f.IPAddress) {
		a.IPAddress = f.IPAddress
	}
	if !IsBlank(f.MacAddress) {
		a.MacAddress = f.MacAddress
	}
	if !IsBlank(f.OperatingSystem) {
		a.OperatingSystem = f.OperatingSystem
	}
	if !IsBlank(f.Location) {
		a.Location = f.Location
	}
	return a.Clone()
}

// Clone returns a copy that shares no pointers with a.
func (a AgentIdentity) Clone() AgentIdentity {
	if a.LastHeartbeat != nil {
		hb := *a.LastHeartbeat
		a.LastHeartbeat = &hb
	}
	return a
}

// OnlineSince reports whether the last heartbeat is at or after cutoff.
func (a AgentIdentity) OnlineSince(cutoff time.Time) bool {
	return a.LastHeartbeat != nil && !a.LastHeartbeat.Before(cutoff)
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
