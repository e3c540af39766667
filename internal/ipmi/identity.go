package ipmi

import "strings"

// Slug normalizes free text into a topic-safe identifier: lowercase,
// every run of characters outside [a-z0-9_] becomes a single
// underscore, and edge underscores are trimmed. Deterministic, so the
// same sensor name always yields the same slug across restarts.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevUnderscore := false
	for _, r := range strings.ToLower(s) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
		if ok && r != '_' {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

// EntityID derives the stable identifier for a sensor on a node. It is
// used both as the MQTT topic segment and as the discovery payload's
// unique_id. Two distinct sensor names that normalize to the same slug
// share a topic and the later one's state overwrites the earlier's;
// that is a known limitation of slug-based identity, not an error.
func EntityID(nodeID, sensorName string) string {
	return Slug(nodeID) + "_" + Slug(sensorName)
}
