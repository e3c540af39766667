package bridge

import "testing"

func TestPublishedSet(t *testing.T) {
	s := NewPublishedSet()

	if s.Has("server_r720_cpu1_temp") {
		t.Error("empty set should not contain anything")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}

	s.Mark("server_r720_cpu1_temp")
	if !s.Has("server_r720_cpu1_temp") {
		t.Error("marked entity not found")
	}

	// Marking again is a no-op, not a growth.
	s.Mark("server_r720_cpu1_temp")
	if s.Len() != 1 {
		t.Errorf("Len() = %d after duplicate mark, want 1", s.Len())
	}

	s.Mark("server_r720_fan1")
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
