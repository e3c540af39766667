// Package mqtt manages the broker connection for bmc2mqtt and owns the
// Home Assistant discovery payload types.
//
// The publisher uses Eclipse Paho v2's [autopaho] package for
// connection management with automatic reconnection. A will message
// ensures the availability topic transitions to "offline" on
// unexpected disconnects, and a birth message ("online") is published
// on every (re-)connect. The bridge package drives all discovery and
// state publishes through [Publisher.Publish]; this package does not
// decide what to publish, only how.
package mqtt
