package voice

import (
	"regexp"
)

const wakeWord = `(?i)^(?:kibena|cybena|key\s*bena)\s+`

// Pattern maps an utterance shape to a command. Capture groups become the
// handler's arguments; the wake word is not captured.
type Pattern struct {
	Re   *regexp.Regexp
	Kind Kind
}

// DefaultPatterns is ordered: the first match wins, so specific shapes must
// come before ones whose free-text capture could swallow them.
var DefaultPatterns = []Pattern{
	{Re: regexp.MustCompile(wakeWord + `read\s+(.+)`), Kind: KindRead},
	{Re: regexp.MustCompile(wakeWord + `search\s+(.+)`), Kind: KindSearch},
	{Re: regexp.MustCompile(wakeWord + `translate\s+to\s+(\w+)\s+(.+)`), Kind: KindTranslate},
	{Re: regexp.MustCompile(wakeWord + `help`), Kind: KindHelp},
}

type Match struct {
	Kind Kind
	Args []string
}

// MatchCommand returns the first pattern in table order that matches the
// start of utterance.
func MatchCommand(patterns []Pattern, utterance string) (Match, bool) {
	for _, p := range patterns {
		groups := p.Re.FindStringSubmatch(utterance)
		if groups == nil {
			continue
		}
		return Match{Kind: p.Kind, Args: groups[1:]}, true
	}
	return Match{}, false
}
