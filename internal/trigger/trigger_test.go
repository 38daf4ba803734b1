package trigger

import (
	"testing"

	"go.klb.dev/snipd/internal/snippet"
)

func index(triggers ...string) *Index {
	ix := NewIndex()
	sns := make([]snippet.Snippet, len(triggers))
	for i, tr := range triggers {
		sns[i] = snippet.Snippet{ID: tr, Trigger: tr, Content: "x"}
	}
	ix.Rebuild(sns)
	return ix
}

func TestBoundaryMatching(t *testing.T) {
	ix := index("!mail")

	tests := []struct {
		buf   string
		match bool
	}{
		{"hi !mail", true},    // delimiter before trigger
		{"xyz!mail", false},   // same-word false positive
		{"!mail", true},       // trigger is the whole buffer
		{"line\n!mail", true}, // newline is a delimiter
		{"(!mail", true},      // punctuation is a delimiter
		{"hi !mai", false},    // incomplete trigger
		{"hi !mailx", false},  // buffer extends past the trigger
		{"", false},
	}
	for _, tc := range tests {
		got := ix.MatchSuffix(tc.buf)
		if (got != nil) != tc.match {
			t.Errorf("MatchSuffix(%q) matched=%v, want %v", tc.buf, got != nil, tc.match)
		}
	}
}

func TestLongestMatchPrecedence(t *testing.T) {
	ix := index("!m", "!mail")

	m := ix.MatchSuffix("typing !mail")
	if m == nil {
		t.Fatal("MatchSuffix returned nil, want a match")
	}
	if m.Snippet.Trigger != "!mail" {
		t.Errorf("matched trigger = %q, want %q", m.Snippet.Trigger, "!mail")
	}

	// The short trigger still matches on its own.
	m = ix.MatchSuffix("typing !m")
	if m == nil || m.Snippet.Trigger != "!m" {
		t.Errorf("MatchSuffix(\"typing !m\") = %v, want !m", m)
	}
}

func TestShorterTriggerWinsWhenLongerFailsBoundary(t *testing.T) {
	// "ail" ends the buffer but is glued to "gm"; "il" likewise. Only a
	// trigger with a clean boundary may fire.
	ix := index("ail", "il")
	if m := ix.MatchSuffix("gmail"); m != nil {
		t.Errorf("MatchSuffix(\"gmail\") matched %q, want no match", m.Snippet.Trigger)
	}
}

func TestRebuildReplacesSet(t *testing.T) {
	ix := index("!old")
	if ix.MatchSuffix("!old") == nil {
		t.Fatal("expected !old to match before rebuild")
	}
	ix.Rebuild([]snippet.Snippet{{ID: "n", Trigger: "!new", Content: "x"}})
	if ix.MatchSuffix("!old") != nil {
		t.Error("!old still matches after rebuild")
	}
	if ix.MatchSuffix("!new") == nil {
		t.Error("!new does not match after rebuild")
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
}
