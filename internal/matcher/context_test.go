package matcher

import "testing"

func buildTestContext(t *testing.T, texts ...string) *NavigationContext {
	t.Helper()
	slides := make([]SlideData, len(texts))
	for i, text := range texts {
		slides[i] = SlideData{PageNumber: i + 1, Text: text}
	}
	return BuildContext("pres_test", slides)
}

func TestBuildContext_Signals(t *testing.T) {
	nav := buildTestContext(t,
		"introduction overview agenda",
		"kubernetes kubernetes orchestration containers",
		"closing remarks")

	if nav.SlideCount() != 3 {
		t.Fatalf("expected 3 slides, got %d", nav.SlideCount())
	}

	cur := nav.Current()
	if cur == nil || cur.PageNumber != 1 {
		t.Fatalf("expected cursor on page 1, got %+v", cur)
	}
	if len(cur.Keywords) == 0 {
		t.Error("expected keywords extracted for slide 1")
	}
	if len(cur.TransitionPhrases) == 0 {
		t.Error("expected transition phrases toward slide 2")
	}

	last := nav.Lookahead(5)
	if len(last) != 2 {
		t.Fatalf("expected 2 lookahead slides, got %d", len(last))
	}
	if len(last[1].TransitionPhrases) != 0 {
		t.Error("final slide should have no transition phrases")
	}
}

func TestLookahead_ClippedNeverWraps(t *testing.T) {
	nav := buildTestContext(t, "alpha content", "beta content", "gamma content")

	if got := nav.Lookahead(2); len(got) != 2 || got[0].PageNumber != 2 {
		t.Errorf("unexpected lookahead from start: %+v", got)
	}

	nav.AdvanceTo(3)
	for _, n := range []int{0, 1, 3, 100} {
		if got := nav.Lookahead(n); len(got) != 0 {
			t.Errorf("Lookahead(%d) at last slide should be empty, got %d", n, len(got))
		}
	}
}

func TestAdvanceTo_Idempotent(t *testing.T) {
	nav := buildTestContext(t, "one content", "two content", "three content")

	if !nav.AdvanceTo(2) {
		t.Fatal("AdvanceTo(2) should succeed")
	}
	if !nav.AdvanceTo(2) {
		t.Fatal("second AdvanceTo(2) should succeed")
	}
	if nav.Current().PageNumber != 2 {
		t.Errorf("expected cursor on page 2, got %d", nav.Current().PageNumber)
	}
}

func TestAdvanceTo_UnknownPageNoMutation(t *testing.T) {
	nav := buildTestContext(t, "one content", "two content")
	nav.AdvanceTo(2)

	if nav.AdvanceTo(99) {
		t.Error("AdvanceTo(99) should fail")
	}
	if nav.Current().PageNumber != 2 {
		t.Errorf("failed AdvanceTo must not move the cursor, got page %d", nav.Current().PageNumber)
	}
}

func TestAdvanceNext_GoPrevious_Bounds(t *testing.T) {
	nav := buildTestContext(t, "one content", "two content")

	if nav.GoPrevious() {
		t.Error("GoPrevious at first slide should fail")
	}
	if !nav.AdvanceNext() {
		t.Error("AdvanceNext should succeed")
	}
	if !nav.IsLast() {
		t.Error("expected IsLast after advancing to page 2 of 2")
	}
	if nav.AdvanceNext() {
		t.Error("AdvanceNext at last slide should fail")
	}
	if !nav.GoPrevious() {
		t.Error("GoPrevious should succeed from page 2")
	}
	if nav.Current().PageNumber != 1 {
		t.Errorf("expected page 1, got %d", nav.Current().PageNumber)
	}
}

func TestCurrent_EmptyDeck(t *testing.T) {
	nav := BuildContext("pres_empty", nil)
	if nav.Current() != nil {
		t.Error("expected nil current slide for empty deck")
	}
	if got := nav.Lookahead(3); len(got) != 0 {
		t.Errorf("expected empty lookahead, got %d", len(got))
	}
}
