package mqtt

import "github.com/nugget/bmc2mqtt/internal/buildinfo"

// DeviceInfo holds the Home Assistant device registry fields shared
// across all discovery config payloads. Every sensor entity published
// for a node references the same device block so HA groups them under
// a single device page.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SWVersion    string   `json:"sw_version"`
}

// SensorConfig is the JSON payload for an HA MQTT sensor discovery
// message. It is published retained so the hub re-creates entities
// after its own restarts. Field order is fixed by the struct, so
// marshaling the same config twice yields identical bytes — required
// for retained-message idempotence.
type SensorConfig struct {
	Name              string     `json:"name"`
	UniqueID          string     `json:"unique_id"`
	StateTopic        string     `json:"state_topic"`
	AvailabilityTopic string     `json:"availability_topic,omitempty"`
	Device            DeviceInfo `json:"device"`
	UnitOfMeasurement string     `json:"unit_of_measurement,omitempty"`
	DeviceClass       string     `json:"device_class,omitempty"`
	StateClass        string     `json:"state_class,omitempty"`
	ValueTemplate     string     `json:"value_template,omitempty"`
}

// NewDeviceInfo creates the device block for a monitored node. The
// node ID is the HA device identifier; entity history survives as
// long as the configured node_id is stable.
func NewDeviceInfo(nodeID string) DeviceInfo {
	return DeviceInfo{
		Identifiers:  []string{nodeID},
		Name:         "IPMI " + nodeID,
		Manufacturer: "IPMI",
		Model:        "BMC",
		SWVersion:    buildinfo.Version,
	}
}
