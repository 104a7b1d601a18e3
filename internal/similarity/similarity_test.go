package similarity

import "testing"

func TestTitlesIdentical(t *testing.T) {
	title := "Parliament approves sweeping energy reform package"
	if got := Titles(title, title); got != 1.0 {
		t.Errorf("identical titles: expected 1.0, got %v", got)
	}
}

func TestTitlesDisjoint(t *testing.T) {
	if got := Titles("Volcano erupts overnight", "Markets rally after earnings"); got != 0 {
		t.Errorf("disjoint titles: expected 0, got %v", got)
	}
}

func TestTitlesSymmetric(t *testing.T) {
	a := "Leaders gather for climate summit in Geneva"
	b := "Climate summit opens with leaders in attendance"
	if Titles(a, b) != Titles(b, a) {
		t.Errorf("similarity not symmetric: %v vs %v", Titles(a, b), Titles(b, a))
	}
}

func TestTitlesShortTokensIgnored(t *testing.T) {
	// Every token is 3 chars or fewer, so both sets are empty and the
	// empty-union guard must return 0, not NaN.
	if got := Titles("the cat sat", "a big dog ran"); got != 0 {
		t.Errorf("expected 0 for all-short tokens, got %v", got)
	}
}

func TestTitlesPartialOverlap(t *testing.T) {
	// Sets: {president, signs, trade, agreement} and {president, vetoes,
	// trade, legislation}. Intersection 2, union 6.
	got := Titles("President signs trade agreement", "President vetoes trade legislation")
	want := 2.0 / 6.0
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTitlesCaseInsensitive(t *testing.T) {
	if got := Titles("BREAKING NEWS TODAY", "breaking news today"); got != 1.0 {
		t.Errorf("expected case-insensitive match 1.0, got %v", got)
	}
}

func TestTitlesBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"one two three", ""},
		{"Election results delayed in three provinces", "Provinces report delayed election results"},
		{"Completely unrelated headline here", "Another different sentence entirely"},
	}
	for _, p := range pairs {
		got := Titles(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Titles(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
	}
}
