// Package bridge runs the poll cycle: execute the sensor utility,
// parse its output into readings, and publish Home Assistant discovery
// and state messages for each one. Exactly one cycle is in flight at a
// time; the next tick waits for the current cycle's publishes to
// finish.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nugget/bmc2mqtt/internal/ipmi"
	"github.com/nugget/bmc2mqtt/internal/mqtt"
)

// Publisher is the outbound MQTT surface the bridge needs. The
// concrete implementation is [mqtt.Publisher]; tests inject a
// recording fake.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retain bool) error
}

// Config wires the bridge's collaborators and settings.
type Config struct {
	// Runner produces raw sensor utility output once per cycle.
	Runner ipmi.Runner

	// Publisher delivers discovery and state messages.
	Publisher Publisher

	// NodeID identifies the monitored host in topics and payloads.
	NodeID string

	// DiscoveryPrefix is the HA discovery topic prefix
	// (default "homeassistant").
	DiscoveryPrefix string

	// AvailabilityTopic, when non-empty, is referenced by every
	// discovery payload so HA tracks entity availability.
	AvailabilityTopic string

	// PollInterval is the time between poll cycles.
	PollInterval time.Duration

	// Metrics is optional Prometheus instrumentation.
	Metrics *Metrics

	// Logger for structured logging.
	Logger *slog.Logger
}

// Bridge is the publish cycle orchestrator.
type Bridge struct {
	cfg       Config
	device    mqtt.DeviceInfo
	published *PublishedSet
}

// New creates a Bridge. Call [Bridge.Start] to begin polling.
func New(cfg Config) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DiscoveryPrefix == "" {
		cfg.DiscoveryPrefix = "homeassistant"
	}
	return &Bridge{
		cfg:       cfg,
		device:    mqtt.NewDeviceInfo(cfg.NodeID),
		published: NewPublishedSet(),
	}
}

// Start runs the polling loop until ctx is cancelled. It blocks.
func (b *Bridge) Start(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	// Poll immediately on start.
	b.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.poll(ctx)
		}
	}
}

// Poll runs one cycle: collect, parse, publish. Exposed for one-shot
// use and tests; Start calls it on every tick.
func (b *Bridge) Poll(ctx context.Context) {
	b.poll(ctx)
}

func (b *Bridge) poll(ctx context.Context) {
	b.cfg.Metrics.incPollCycles()

	output, err := b.cfg.Runner.Output(ctx)
	if err != nil {
		// Skip the whole cycle; nothing partial or stale goes out.
		b.cfg.Logger.Warn("sensor poll failed, skipping cycle", "error", err)
		b.cfg.Metrics.incPollFailures()
		return
	}

	readings := ipmi.ParseOutput(output, b.cfg.Logger)

	var discoveries, states int
	for _, r := range readings {
		entityID := ipmi.EntityID(b.cfg.NodeID, r.Name)

		if !b.published.Has(entityID) {
			if !b.publishDiscovery(ctx, r, entityID) {
				// The entity is unknown to the hub; publishing its
				// state now could be discarded. Retry both next cycle.
				continue
			}
			b.published.Mark(entityID)
			discoveries++
		}

		if !r.HasValue() {
			continue
		}
		if err := b.cfg.Publisher.Publish(ctx, b.stateTopic(entityID), []byte(r.StateValue()), false); err != nil {
			b.cfg.Logger.Warn("state publish failed",
				"entity", entityID, "error", err)
			b.cfg.Metrics.incPublishFailures()
			continue
		}
		states++
		b.cfg.Metrics.observeReading(r.Name, r.UnitRaw, *r.Value)
	}

	b.cfg.Logger.Debug("poll cycle complete",
		"readings", len(readings),
		"discoveries", discoveries,
		"states", states,
		"known_entities", b.published.Len(),
	)
}

// publishDiscovery sends the retained config payload for one sensor.
// Returns false when the publish failed; the caller leaves the entity
// unmarked so the next cycle retries.
func (b *Bridge) publishDiscovery(ctx context.Context, r ipmi.Reading, entityID string) bool {
	payload, err := json.Marshal(b.sensorConfig(r, entityID))
	if err != nil {
		b.cfg.Logger.Error("marshal discovery payload",
			"entity", entityID, "error", err)
		return false
	}

	if err := b.cfg.Publisher.Publish(ctx, b.configTopic(entityID), payload, true); err != nil {
		b.cfg.Logger.Warn("discovery publish failed",
			"entity", entityID, "error", err)
		b.cfg.Metrics.incPublishFailures()
		return false
	}

	b.cfg.Logger.Info("discovery published",
		"entity", entityID, "sensor", r.Name, "unit", r.UnitRaw)
	return true
}
