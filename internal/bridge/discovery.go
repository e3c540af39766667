package bridge

import (
	"github.com/nugget/bmc2mqtt/internal/ipmi"
	"github.com/nugget/bmc2mqtt/internal/mqtt"
)

// configTopic is where the retained discovery payload for an entity
// goes. The shape is fixed by the Home Assistant MQTT discovery
// contract: <prefix>/sensor/<node_id>/<entity_id>/config.
func (b *Bridge) configTopic(entityID string) string {
	return b.cfg.DiscoveryPrefix + "/sensor/" + b.cfg.NodeID + "/" + entityID + "/config"
}

// stateTopic is the plain-text state topic for an entity:
// <prefix>/sensor/<node_id>/<entity_id>/state.
func (b *Bridge) stateTopic(entityID string) string {
	return b.cfg.DiscoveryPrefix + "/sensor/" + b.cfg.NodeID + "/" + entityID + "/state"
}

// sensorConfig builds the discovery payload for a reading. It depends
// only on the reading's stable attributes (name, unit) and the node
// identity, so repeated calls with the same inputs marshal to
// identical bytes.
func (b *Bridge) sensorConfig(r ipmi.Reading, entityID string) mqtt.SensorConfig {
	unit, deviceClass := ipmi.UnitMetadata(r.Unit, r.UnitRaw)

	return mqtt.SensorConfig{
		Name:              "IPMI " + r.Name,
		UniqueID:          entityID,
		StateTopic:        b.stateTopic(entityID),
		AvailabilityTopic: b.cfg.AvailabilityTopic,
		Device:            b.device,
		UnitOfMeasurement: unit,
		DeviceClass:       deviceClass,
		StateClass:        "measurement",
	}
}
