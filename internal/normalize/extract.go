// Package normalize rewrites documentation markup into text that can be read
// aloud or rendered, leaving code spans untouched.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedRe   = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")
	indentedRe = regexp.MustCompile(`(?:(?:^|\n)[ ]{4}[^\n]+)+(?:\n|$)`)
	inlineRe   = regexp.MustCompile("`([^`]+)`")
	tokenRe    = regexp.MustCompile(`(?:CODE_BLOCK|INLINE_CODE)_\d{4}`)
	indentRe   = regexp.MustCompile(`(?:^|\n)[ ]{4}`)
)

// maxSpans is the most spans a four-digit token can number.
const maxSpans = 10000

type SpanKind int

const (
	Fenced SpanKind = iota
	Indented
	Inline
)

// Span is one piece of code cut out of the text.
type Span struct {
	Token    string
	Kind     SpanKind
	Original string
	// Lang is the info string of a fenced block, if any.
	Lang string
	// Code is the literal code without fences, backticks or block indentation.
	Code string
}

// Extracted is text whose code spans have been replaced with placeholder tokens.
type Extracted struct {
	Text  string
	Spans []Span
	index map[string]int
}

// Extract replaces fenced blocks, then indented blocks, then inline spans with
// placeholder tokens. The order keeps indentation inside a fenced block from
// being taken as an indented block.
//
// Text with more than maxSpans spans is returned unchanged with no spans.
func Extract(text string) *Extracted {
	e := &Extracted{index: make(map[string]int)}
	original := text

	text = fencedRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := fencedRe.FindStringSubmatch(m)
		return e.add("CODE_BLOCK", Span{
			Kind:     Fenced,
			Original: m,
			Lang:     sub[1],
			Code:     strings.TrimRight(sub[2], "\n"),
		})
	})

	// Later passes can swallow tokens of earlier ones, as with a fenced
	// block indented under a list item. Their spans record the restored text.
	text = indentedRe.ReplaceAllStringFunc(text, func(m string) string {
		m = e.Restore(m)
		return e.add("CODE_BLOCK", Span{
			Kind:     Indented,
			Original: m,
			Code:     strings.Trim(indentRe.ReplaceAllString(m, "\n"), "\n"),
		})
	})

	text = inlineRe.ReplaceAllStringFunc(text, func(m string) string {
		m = e.Restore(m)
		return e.add("INLINE_CODE", Span{
			Kind:     Inline,
			Original: m,
			Code:     m[1 : len(m)-1],
		})
	})

	if len(e.Spans) > maxSpans {
		return &Extracted{Text: original, index: make(map[string]int)}
	}
	e.Text = text
	return e
}

func (e *Extracted) add(prefix string, s Span) string {
	if len(e.Spans) >= maxSpans {
		// Past the token width; Extract discards everything.
		e.Spans = append(e.Spans, s)
		return s.Original
	}
	s.Token = fmt.Sprintf("%s_%04d", prefix, len(e.Spans))
	e.index[s.Token] = len(e.Spans)
	e.Spans = append(e.Spans, s)
	return s.Token
}

// Lookup returns the span recorded for token.
func (e *Extracted) Lookup(token string) (Span, bool) {
	i, ok := e.index[token]
	if !ok {
		return Span{}, false
	}
	return e.Spans[i], true
}

// Restore puts the original code back into text, which is usually e.Text after
// it went through a translator. Only tokens recorded by Extract are replaced.
// Tokens are fixed width so a digit right after one is never read as part of it.
func (e *Extracted) Restore(text string) string {
	return e.Expand(text, func(s Span) string { return s.Original })
}

// Expand replaces every known token in text with render(span).
func (e *Extracted) Expand(text string, render func(Span) string) string {
	if len(e.Spans) == 0 {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		s, ok := e.Lookup(tok)
		if !ok {
			return tok
		}
		return render(s)
	})
}

// mapOutsideTokens applies fn to the runs of text between placeholder tokens.
func mapOutsideTokens(text string, fn func(string) string) string {
	locs := tokenRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return fn(text)
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(fn(text[prev:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(fn(text[prev:]))
	return b.String()
}
