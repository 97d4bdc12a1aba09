package suggest

import "testing"

func TestClosestFindsNearMiss(t *testing.T) {
	m := NewMatcher([]string{"return", "struct", "switch"}, DefaultThreshold)
	got, score, ok := m.Closest("retrun")
	if !ok {
		t.Fatal("expected a match above threshold")
	}
	if got != "return" {
		t.Errorf("expected 'return', got %q (score %f)", got, score)
	}
}

func TestClosestExcludesExactMatch(t *testing.T) {
	m := NewMatcher([]string{"return"}, DefaultThreshold)
	_, _, ok := m.Closest("return")
	if ok {
		t.Error("expected an exact match to be excluded, not suggested as a correction of itself")
	}
}

func TestClosestRejectsBelowThreshold(t *testing.T) {
	m := NewMatcher([]string{"return", "struct", "switch", "while"}, DefaultThreshold)
	_, _, ok := m.Closest("xyz")
	if ok {
		t.Error("expected no candidate to clear the threshold for an unrelated word")
	}
}

func TestClosestNoCandidates(t *testing.T) {
	m := NewMatcher(nil, DefaultThreshold)
	_, _, ok := m.Closest("anything")
	if ok {
		t.Error("expected no match with an empty candidate set")
	}
}

func TestNewMatcherRejectsInvalidThreshold(t *testing.T) {
	m := NewMatcher([]string{"a"}, 0)
	if m.threshold != DefaultThreshold {
		t.Errorf("expected invalid threshold to fall back to DefaultThreshold, got %f", m.threshold)
	}
}
