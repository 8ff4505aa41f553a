package possession

import (
	"testing"

	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

func TestKeywordClassifier_ClassifyFoul(t *testing.T) {
	t.Parallel()

	classifier := NewKeywordClassifier(DefaultKeywords())
	cases := []struct {
		description string
		want        FoulKind
	}{
		{"Offensive Foul (P1.T2)", FoulOffensive},
		{"OFFENSIVE CHARGE FOUL", FoulOffensive},
		{"Charge Foul", FoulOffensive},
		{"Clear Path Foul", FoulOffensive},
		{"Shooting Foul", FoulOther},
		{"Offensive Goaltending", FoulOther},
		{"Offensively fouled", FoulOther},
	}
	for _, tc := range cases {
		got := classifier.ClassifyFoul(pbp.Event{Type: pbp.EventFoul, HomeDescription: tc.description})
		if got != tc.want {
			t.Fatalf("ClassifyFoul(%q)=%d want=%d", tc.description, got, tc.want)
		}
	}
}

func TestKeywordClassifier_ClassifyViolation(t *testing.T) {
	t.Parallel()

	classifier := NewKeywordClassifier(DefaultKeywords())
	cases := []struct {
		eventType   pbp.EventType
		description string
		want        ViolationKind
	}{
		{pbp.EventViolation, "Traveling", ViolationTurnover},
		{pbp.EventViolation, "Kicked Ball Violation", ViolationNoTurnover},
		{pbp.EventViolation, "Defensive Goaltending Violation", ViolationNoTurnover},
		{pbp.EventUnclassified, "Lane Violation", ViolationTurnover},
		{pbp.EventUnclassified, "Instant Replay", ViolationNone},
		{pbp.EventUnclassified, "Violations reviewed", ViolationNone},
	}
	for _, tc := range cases {
		got := classifier.ClassifyViolation(pbp.Event{Type: tc.eventType, NeutralDescription: tc.description})
		if got != tc.want {
			t.Fatalf("ClassifyViolation(%s, %q)=%d want=%d", tc.eventType, tc.description, got, tc.want)
		}
	}
}

func TestKeywordClassifier_CustomKeywords(t *testing.T) {
	t.Parallel()

	classifier := NewKeywordClassifier(Keywords{
		OffensiveFoul: []string{"  Illegal Screen ", ""},
		Violation:     []string{"violation"},
	})

	if got := classifier.ClassifyFoul(pbp.Event{VisitorDescription: "Illegal Screen Foul"}); got != FoulOffensive {
		t.Fatalf("expected configured phrase to match, got=%d", got)
	}
	if got := classifier.ClassifyFoul(pbp.Event{VisitorDescription: "Offensive Foul"}); got != FoulOther {
		t.Fatalf("expected defaults to be replaced, got=%d", got)
	}
}

func TestParseFreeThrowAttempt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		description string
		want        FreeThrowAttempt
		wantOK      bool
	}{
		{"Free Throw 1 of 2", FreeThrowAttempt{Number: 1, Total: 2}, true},
		{"MISS Free Throw 3 of 3", FreeThrowAttempt{Number: 3, Total: 3}, true},
		{"Free Throw Flagrant 2 OF 2", FreeThrowAttempt{Number: 2, Total: 2}, true},
		{"Free Throw Technical", FreeThrowAttempt{}, false},
		{"Free Throw 3 of 2", FreeThrowAttempt{}, false},
		{"Free Throw 1 of 2 | Free Throw 2 of 2", FreeThrowAttempt{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseFreeThrowAttempt(pbp.Event{Type: pbp.EventFreeThrow, NeutralDescription: tc.description})
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("ParseFreeThrowAttempt(%q)=(%+v,%v) want=(%+v,%v)", tc.description, got, ok, tc.want, tc.wantOK)
		}
	}
	if !(FreeThrowAttempt{Number: 2, Total: 2}).Final() || (FreeThrowAttempt{Number: 1, Total: 2}).Final() {
		t.Fatalf("unexpected Final result")
	}
}

func TestIsClutch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		period      int
		clock       float64
		margin      int
		marginKnown bool
		want        bool
	}{
		{"late fourth close game", 4, 120, -3, true, true},
		{"boundary clock and margin", 4, 300, 5, true, true},
		{"too early", 4, 301, 0, true, false},
		{"blowout", 4, 60, 12, true, false},
		{"third period", 3, 30, 0, true, false},
		{"overtime", 6, 200, 2, true, true},
		{"unknown margin", 4, 10, 0, false, false},
	}
	for _, tc := range cases {
		if got := IsClutch(tc.period, tc.clock, tc.margin, tc.marginKnown); got != tc.want {
			t.Fatalf("%s: IsClutch=%v want=%v", tc.name, got, tc.want)
		}
	}
	if IsOvertime(4) || !IsOvertime(5) {
		t.Fatalf("unexpected overtime predicate")
	}
}

func TestMismatchStrategyByName(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{
		"":              StrategyTrustShooter,
		"trust_shooter": StrategyTrustShooter,
		" CLOSE_REOPEN": StrategyCloseReopen,
	} {
		strategy, err := MismatchStrategyByName(name)
		if err != nil {
			t.Fatalf("MismatchStrategyByName(%q) error: %v", name, err)
		}
		if strategy.Name() != want {
			t.Fatalf("MismatchStrategyByName(%q)=%s want=%s", name, strategy.Name(), want)
		}
	}
	if _, err := MismatchStrategyByName("guess"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
