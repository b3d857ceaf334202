package tts

import (
	"strings"
	"unicode/utf8"
)

// splitText breaks text into chunks of at most size runes, cutting on
// whitespace. Words longer than size are cut mid-word.
func splitText(text string, size int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > size {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:size]))
			word = string(runes[size:])
		}

		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > size {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()
	return chunks
}
