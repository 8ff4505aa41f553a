package pbp

import (
	"strings"
	"unicode"

	"github.com/valyala/bytebufferpool"
)

const descriptionSeparator = " | "

// Side identifies which team-side description a row carries.
type Side int

const (
	SideUnknown Side = iota
	SideHome
	SideVisitor
)

// Describe joins the present description fragments in home, visitor, neutral order.
func Describe(e Event) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, part := range []string{e.HomeDescription, e.VisitorDescription, e.NeutralDescription} {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if buf.Len() > 0 {
			_, _ = buf.WriteString(descriptionSeparator)
		}
		_, _ = buf.WriteString(part)
	}
	return buf.String()
}

// DescriptionSide reports the side whose description is populated when exactly one of them is.
func DescriptionSide(e Event) Side {
	home := strings.TrimSpace(e.HomeDescription) != ""
	visitor := strings.TrimSpace(e.VisitorDescription) != ""
	switch {
	case home && !visitor:
		return SideHome
	case visitor && !home:
		return SideVisitor
	default:
		return SideUnknown
	}
}

// InferTeam resolves a missing team from the populated description side.
func InferTeam(e Event, game Game) (int64, bool) {
	if e.HasTeam {
		return e.TeamID, true
	}
	switch DescriptionSide(e) {
	case SideHome:
		return positive(game.HomeTeamID)
	case SideVisitor:
		return positive(game.VisitorTeamID)
	default:
		return 0, false
	}
}

// MatchesPhrase reports whether phrase occurs in text as a whole phrase:
// case-insensitive and bounded by non-alphanumeric characters ("violation"
// does not match "violations").
func MatchesPhrase(text, phrase string) bool {
	text = strings.ToLower(text)
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" || text == "" {
		return false
	}

	for offset := 0; offset <= len(text)-len(phrase); {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

// MatchesAnyPhrase returns the first phrase that matches text.
func MatchesAnyPhrase(text string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if MatchesPhrase(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r := rune(text[idx-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r := rune(text[idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
