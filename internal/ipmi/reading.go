// Package ipmi turns the tabular output of an IPMI sensor utility into
// typed readings suitable for republishing. It owns line parsing, unit
// classification, and the stable entity identifiers derived from sensor
// names.
package ipmi

import (
	"strconv"
	"strings"
)

// UnitClass is the semantic category of a sensor's unit string. The
// zero value is UnitUnknown, so an unclassified reading is still valid.
type UnitClass int

const (
	UnitUnknown UnitClass = iota
	UnitTemperature
	UnitVoltage
	UnitCurrent
	UnitPower
	UnitRotation
	UnitPercent
)

// String returns the Home Assistant device_class name for the unit
// class, or "unknown" for unclassified units.
func (u UnitClass) String() string {
	switch u {
	case UnitTemperature:
		return "temperature"
	case UnitVoltage:
		return "voltage"
	case UnitCurrent:
		return "current"
	case UnitPower:
		return "power"
	case UnitRotation:
		return "rotation"
	case UnitPercent:
		return "percent"
	default:
		return "unknown"
	}
}

// ClassifyUnit maps a free-text unit string from the sensor utility to
// a UnitClass. Matching is exact after lowercasing and trimming; the
// single-letter forms appear in some BMC firmware output. Anything
// unrecognized (including empty) is UnitUnknown, never an error, so
// sensor types outside the known set still flow through the pipeline.
func ClassifyUnit(raw string) UnitClass {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "degrees c", "c":
		return UnitTemperature
	case "volts", "v":
		return UnitVoltage
	case "amps", "a":
		return UnitCurrent
	case "watts", "w":
		return UnitPower
	case "rpm":
		return UnitRotation
	case "%", "percent":
		return UnitPercent
	default:
		return UnitUnknown
	}
}

// UnitMetadata returns the unit_of_measurement and optional
// device_class for a discovery payload. Classes without a Home
// Assistant device_class (rotation, percent) return an empty class;
// unknown units pass the raw text through verbatim so the entity still
// renders with whatever unit the BMC reported.
func UnitMetadata(class UnitClass, raw string) (unit, deviceClass string) {
	switch class {
	case UnitTemperature:
		return "°C", "temperature"
	case UnitVoltage:
		return "V", "voltage"
	case UnitCurrent:
		return "A", "current"
	case UnitPower:
		return "W", "power"
	case UnitRotation:
		return "RPM", ""
	case UnitPercent:
		return "%", ""
	default:
		return raw, ""
	}
}

// Reading is one sensor row from a poll cycle. Value is nil when the
// utility reported no reading ("na" and friends); such readings are
// still useful for discovery but produce no state publish.
type Reading struct {
	Name    string
	Value   *float64
	UnitRaw string
	Unit    UnitClass
}

// HasValue reports whether the reading carries a numeric value.
func (r Reading) HasValue() bool {
	return r.Value != nil
}

// StateValue renders the numeric value as the state payload body.
// Whole numbers keep one fractional digit ("45.0", not "45") so the
// payload format is stable regardless of what precision the utility
// reported. Returns "" when no value is present.
func (r Reading) StateValue() string {
	if r.Value == nil {
		return ""
	}
	s := strconv.FormatFloat(*r.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
