package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlRe         = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `)\]]+`)
	blockTagRe    = regexp.MustCompile(`\{%\s*(.+?)\s*%\}`)
	variableTagRe = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)
)

// Normalizer renders documentation text for speech using a pronunciation table.
type Normalizer struct {
	table Table
}

// New returns a Normalizer. A nil table means DefaultTable.
func New(table Table) *Normalizer {
	if table == nil {
		table = DefaultTable
	}
	return &Normalizer{table: table}
}

// ForSpeech turns markup into text a speech engine can read. URLs, template
// tags and jargon are rewritten only outside code; code is verbalized as is.
func (n *Normalizer) ForSpeech(text string) string {
	e := Extract(text)

	out := mapOutsideTokens(e.Text, func(s string) string {
		s = urlRe.ReplaceAllStringFunc(s, speakURL)
		s = blockTagRe.ReplaceAllString(s, "template tag $1")
		s = variableTagRe.ReplaceAllString(s, "template variable $1")
		return n.table.Apply(s)
	})

	out = e.Expand(out, func(s Span) string {
		if s.Kind == Inline {
			return "code: " + s.Code
		}
		return fmt.Sprintf(" Code block starts. %s. Code block ends. ", s.Code)
	})

	return strings.TrimSpace(out)
}

// speakURL drops the scheme and trailing slash so "https://go.dev/doc/" is
// read as "URL: go.dev/doc". Sentence punctuation stuck to the URL is kept
// after it.
func speakURL(raw string) string {
	trimmed := strings.TrimRight(raw, ".,;:!?")
	tail := raw[len(trimmed):]
	path := strings.TrimPrefix(strings.TrimPrefix(trimmed, "https://"), "http://")
	path = strings.TrimRight(path, "/")
	return "URL: " + path + tail
}
