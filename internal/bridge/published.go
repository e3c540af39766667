package bridge

// PublishedSet tracks which entity IDs have had a discovery config
// published in this process's lifetime. It only grows; a restart
// re-publishes every config, which is harmless because discovery
// payloads are idempotent and retained. Only the single poll loop
// touches it, so no locking is needed.
type PublishedSet struct {
	ids map[string]struct{}
}

// NewPublishedSet returns an empty set.
func NewPublishedSet() *PublishedSet {
	return &PublishedSet{ids: make(map[string]struct{})}
}

// Has reports whether the entity's discovery config was already
// published.
func (s *PublishedSet) Has(entityID string) bool {
	_, ok := s.ids[entityID]
	return ok
}

// Mark records a successful discovery publish for the entity.
func (s *PublishedSet) Mark(entityID string) {
	s.ids[entityID] = struct{}{}
}

// Len returns the number of entities marked published.
func (s *PublishedSet) Len() int {
	return len(s.ids)
}
