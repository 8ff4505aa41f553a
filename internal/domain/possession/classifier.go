package possession

import (
	"strings"

	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

// FoulKind separates fouls that end the offense's possession from the rest.
type FoulKind int

const (
	FoulOther FoulKind = iota
	FoulOffensive
)

// ViolationKind separates violations that hand the ball over from those that do not.
type ViolationKind int

const (
	ViolationNone ViolationKind = iota
	ViolationTurnover
	ViolationNoTurnover
)

// EventClassifier subdivides fouls and violations, which the canonical taxonomy does not.
type EventClassifier interface {
	ClassifyFoul(event pbp.Event) FoulKind
	ClassifyViolation(event pbp.Event) ViolationKind
}

// Keywords configures the default whole-phrase classifier.
type Keywords struct {
	OffensiveFoul        []string `yaml:"offensive_foul" validate:"min=1,dive,required"`
	Violation            []string `yaml:"violation" validate:"min=1,dive,required"`
	NonTurnoverViolation []string `yaml:"non_turnover_violation" validate:"dive,required"`
}

// DefaultKeywords returns the phrase lists used when nothing is configured.
func DefaultKeywords() Keywords {
	return Keywords{
		OffensiveFoul: []string{
			"offensive foul",
			"offensive charge",
			"charging foul",
			"charge foul",
			"clear path",
		},
		Violation: []string{"violation"},
		NonTurnoverViolation: []string{
			"kicked ball",
			"delay of game",
			"defensive goaltending",
			"jump ball violation",
			"defensive three second",
			"def 3 sec",
		},
	}
}

// KeywordClassifier matches whole phrases against the joined event description.
type KeywordClassifier struct {
	keywords Keywords
}

func NewKeywordClassifier(keywords Keywords) *KeywordClassifier {
	return &KeywordClassifier{keywords: Keywords{
		OffensiveFoul:        cleanPhrases(keywords.OffensiveFoul),
		Violation:            cleanPhrases(keywords.Violation),
		NonTurnoverViolation: cleanPhrases(keywords.NonTurnoverViolation),
	}}
}

func (c *KeywordClassifier) ClassifyFoul(event pbp.Event) FoulKind {
	if _, ok := pbp.MatchesAnyPhrase(pbp.Describe(event), c.keywords.OffensiveFoul); ok {
		return FoulOffensive
	}
	return FoulOther
}

func (c *KeywordClassifier) ClassifyViolation(event pbp.Event) ViolationKind {
	description := pbp.Describe(event)
	if event.Type != pbp.EventViolation {
		if _, ok := pbp.MatchesAnyPhrase(description, c.keywords.Violation); !ok {
			return ViolationNone
		}
	}
	if _, ok := pbp.MatchesAnyPhrase(description, c.keywords.NonTurnoverViolation); ok {
		return ViolationNoTurnover
	}
	return ViolationTurnover
}

func cleanPhrases(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
