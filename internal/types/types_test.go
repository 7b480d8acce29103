package types

import "testing"

func TestSortMatchesByScore(t *testing.T) {
	matches := []JobMatch{
		{JobID: "1", MatchScore: 40},
		{JobID: "2", MatchScore: 90},
		{JobID: "3", MatchScore: 65},
	}

	SortMatchesByScore(matches)

	expected := []string{"2", "3", "1"}
	for i, want := range expected {
		if matches[i].JobID != want {
			t.Errorf("position %d: expected job %s, got %s (score %d)",
				i, want, matches[i].JobID, matches[i].MatchScore)
		}
	}
}

func TestSortMatchesByScoreStable(t *testing.T) {
	// Ties keep the provider's relative ordering
	matches := []JobMatch{
		{JobID: "a", MatchScore: 50},
		{JobID: "b", MatchScore: 50},
		{JobID: "c", MatchScore: 80},
	}

	SortMatchesByScore(matches)

	if matches[0].JobID != "c" {
		t.Errorf("expected job c first, got %s", matches[0].JobID)
	}
	if matches[1].JobID != "a" || matches[2].JobID != "b" {
		t.Errorf("tie order not preserved: got %s, %s", matches[1].JobID, matches[2].JobID)
	}
}

func TestSortMatchesByScoreEmpty(t *testing.T) {
	var matches []JobMatch
	SortMatchesByScore(matches) // must not panic
	if len(matches) != 0 {
		t.Errorf("expected empty slice, got %d entries", len(matches))
	}
}
