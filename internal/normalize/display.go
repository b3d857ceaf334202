package normalize

import (
	"html"
)

// ForDisplay wraps code in the markup the page templates style: fenced and
// indented blocks become code-block divs, inline spans become <code>. Code is
// HTML-escaped; surrounding text is passed through.
func ForDisplay(text string) string {
	e := Extract(text)
	return e.Expand(e.Text, func(s Span) string {
		code := html.EscapeString(s.Code)
		switch s.Kind {
		case Inline:
			return "<code>" + code + "</code>"
		case Fenced:
			lang := ""
			if s.Lang != "" {
				lang = `<div class="code-language">` + html.EscapeString(s.Lang) + `</div>`
			}
			return `<div class="code-block">` + lang + `<pre><code>` + code + `</code></pre></div>`
		default:
			return "\n" + `<div class="code-block"><pre><code>` + code + `</code></pre></div>` + "\n"
		}
	})
}
