package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listFence   = "1. Install:\n\n    ```bash\n    pip install django\n    ```\n"
	inlineFence = "see `a ```\nb\n``` c` here"
)

func TestExtractRestoreRoundTrip(t *testing.T) {
	many := ""
	for i := 0; i < 12; i++ {
		many += fmt.Sprintf("call `f%d()` then ", i)
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "plain text", input: "Models are the single source of truth."},
		{name: "inline", input: "Run `manage.py migrate` first."},
		{name: "fenced with lang", input: "Example:\n```python\nclass A:\n    pass\n```\nDone."},
		{name: "fenced without lang", input: "```\nls -la\n```"},
		{name: "indented at start", input: "    x = 1\n    y = 2\nafter"},
		{name: "indented in middle", input: "Before\n    code line\nAfter"},
		{name: "mixed", input: "Use `a`.\n```go\nfmt.Println(`raw`)\n```\n    indented\ntext `b`"},
		{name: "more than ten spans", input: many},
		{name: "digit right after a span", input: "`a`1 and\n    x\n2nd line"},
		{name: "unbalanced backtick", input: "a ` lonely tick"},
		{name: "template tags", input: "{% url 'index' %} and {{ user.name }}"},
		{name: "fenced block indented in a list", input: listFence},
		{name: "fence inside inline span", input: inlineFence},
		{name: "inline span inside indented block", input: "Text\n    x = `y`\n    z\nmore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Extract(tt.input)
			assert.Equal(t, tt.input, e.Restore(e.Text))
		})
	}
}

func TestExtractOrder(t *testing.T) {
	t.Run("indentation inside a fence stays in the fence", func(t *testing.T) {
		e := Extract("```\n    indented in fence\n```")
		require.Len(t, e.Spans, 1)
		assert.Equal(t, Fenced, e.Spans[0].Kind)
		assert.Equal(t, "    indented in fence", e.Spans[0].Code)
		assert.Equal(t, "CODE_BLOCK_0000", e.Text)
	})

	t.Run("backticks inside a fence stay in the fence", func(t *testing.T) {
		e := Extract("```\nx = `y`\n```")
		require.Len(t, e.Spans, 1)
		assert.Equal(t, Fenced, e.Spans[0].Kind)
	})

	t.Run("tokens share one counter", func(t *testing.T) {
		e := Extract("```\na\n```\n`b`")
		require.Len(t, e.Spans, 2)
		assert.Equal(t, "CODE_BLOCK_0000", e.Spans[0].Token)
		assert.Equal(t, "INLINE_CODE_0001", e.Spans[1].Token)
	})
}

func TestRestoreAfterTranslation(t *testing.T) {
	e := Extract("Call `save()` to store:\n```python\nobj.save()\n```")
	translated := strings.Replace(e.Text, "to store", "pour enregistrer", 1)
	translated = strings.Replace(translated, "Call", "Appelez", 1)

	got := e.Restore(translated)

	assert.Equal(t, "Appelez `save()` pour enregistrer:\n```python\nobj.save()\n```", got)
}

func TestRestoreLeavesUnknownTokens(t *testing.T) {
	e := Extract("`a`")
	assert.Equal(t, "`a` CODE_BLOCK_0007", e.Restore("INLINE_CODE_0000 CODE_BLOCK_0007"))
}

func TestForSpeech(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "inline code",
			input:    "Use `manage.py migrate` to apply.",
			contains: []string{"Use code: manage.py migrate to apply."},
		},
		{
			name:     "fenced block",
			input:    "Example:\n```python\nprint('hi')\n```\nDone.",
			contains: []string{"Code block starts. print('hi'). Code block ends.", "Done."},
			excludes: []string{"```", "python\n"},
		},
		{
			name:     "indented block is dedented",
			input:    "Run:\n    python manage.py runserver\nThen browse.",
			contains: []string{"Code block starts. python manage.py runserver. Code block ends."},
		},
		{
			name:     "url",
			input:    "See https://docs.djangoproject.com/en/5.2/.",
			contains: []string{"See URL: docs.djangoproject.com/en/5.2."},
		},
		{
			name:     "template tags",
			input:    "Write {% url 'index' %} or {{ user.name }}.",
			contains: []string{"template tag url 'index'", "template variable user.name"},
		},
		{
			name:     "jargon outside code only",
			input:    "The ORM speaks SQL: `ORM.query(SQL)`",
			contains: []string{"The O R M speaks S Q L", "code: ORM.query(SQL)"},
		},
		{
			name:     "longer entry wins when listed first",
			input:    "Pass kwargs and args. Use HTTPS not HTTP.",
			contains: []string{"keyword arguments and arguments", "H T T P S not H T T P"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ForSpeech(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestTableOrderMatters(t *testing.T) {
	wrong := Table{{Find: "args", Say: "arguments"}, {Find: "kwargs", Say: "keyword arguments"}}
	right := Table{{Find: "kwargs", Say: "keyword arguments"}, {Find: "args", Say: "arguments"}}

	assert.Equal(t, "kwarguments", wrong.Apply("kwargs"))
	assert.Equal(t, "keyword arguments", right.Apply("kwargs"))
}

func TestTableIsNotIdempotent(t *testing.T) {
	table := Table{{Find: "=", Say: "=="}}
	once := table.Apply("a = b")
	assert.Equal(t, "a == b", once)
	assert.Equal(t, "a ==== b", table.Apply(once))
}

func TestForDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "inline",
			input: "Call `save()`.",
			want:  "Call <code>save()</code>.",
		},
		{
			name:  "fenced with language is escaped",
			input: "```html\n<p>hi</p>\n```",
			want:  `<div class="code-block"><div class="code-language">html</div><pre><code>&lt;p&gt;hi&lt;/p&gt;</code></pre></div>`,
		},
		{
			name:  "fenced without language",
			input: "```\nls\n```",
			want:  `<div class="code-block"><pre><code>ls</code></pre></div>`,
		},
		{
			name:  "indented",
			input: "Run:\n    python manage.py runserver\n    open browser\nThen go.",
			want:  "Run:\n<div class=\"code-block\"><pre><code>python manage.py runserver\nopen browser</code></pre></div>\nThen go.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForDisplay(tt.input))
		})
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()

	t.Run("ordered entries", func(t *testing.T) {
		path := filepath.Join(dir, "table.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- find: QuerySet\n  say: query set\n- find: ORM\n  say: O R M\n"), 0o644))

		table, err := LoadTable(path)
		require.NoError(t, err)
		require.Len(t, table, 2)
		assert.Equal(t, "QuerySet", table[0].Find)
		assert.Equal(t, "a query set from the O R M", table.Apply("a QuerySet from the ORM"))
	})

	t.Run("empty find rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- find: \"\"\n  say: nothing\n"), 0o644))

		_, err := LoadTable(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func FuzzExtractRestore(f *testing.F) {
	for _, seed := range []string{
		"Models are the single source of truth.",
		"Run `manage.py migrate` first.",
		"```\nls -la\n```",
		"Before\n    code line\nAfter",
		"{% url 'index' %} and {{ user.name }}",
		"Text\n    x = `y`\n    z\nmore",
		"Example:\n```python\nclass A:\n    pass\n```\nDone.",
		"    x = 1\n    y = 2\nafter",
		"Use `a`.\n```go\nfmt.Println(`raw`)\n```\n    indented\ntext `b`",
		"`a`1 and\n    x\n2nd line",
		"a ` lonely tick",
		listFence,
		inlineFence,
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in string) {
		if tokenRe.MatchString(in) {
			t.Skip("input already contains a placeholder")
		}
		e := Extract(in)
		if got := e.Restore(e.Text); got != in {
			t.Fatalf("Restore(Extract(%q).Text) = %q", in, got)
		}
	})
}

func TestNestedSpansRecordRestoredText(t *testing.T) {
	e := Extract(listFence)
	require.Len(t, e.Spans, 2)
	outer := e.Spans[1]
	assert.Equal(t, Indented, outer.Kind)
	assert.Equal(t, "```bash\npip install django\n```", outer.Code)
	assert.NotContains(t, outer.Original, "CODE_BLOCK")

	e = Extract(inlineFence)
	require.Len(t, e.Spans, 2)
	assert.Equal(t, "a ```\nb\n``` c", e.Spans[1].Code)
}

func TestNestedSpansRenderWithoutTokens(t *testing.T) {
	display := ForDisplay(listFence)
	assert.NotContains(t, display, "CODE_BLOCK")
	assert.Contains(t, display, "<pre><code>```bash\npip install django\n```</code></pre>")

	speech := New(nil).ForSpeech(listFence)
	assert.NotContains(t, speech, "CODE_BLOCK")
	assert.Contains(t, speech, "Code block starts. ```bash\npip install django\n```. Code block ends.")

	assert.Equal(t, "see code: a ```\nb\n``` c here", New(nil).ForSpeech(inlineFence))
}

func TestExtractTooManySpans(t *testing.T) {
	in := strings.Repeat("`x` ", maxSpans+1)
	e := Extract(in)
	assert.Equal(t, in, e.Text)
	assert.Empty(t, e.Spans)
	assert.Equal(t, in, e.Restore(e.Text))

	in = strings.Repeat("`x` ", maxSpans)
	e = Extract(in)
	assert.Len(t, e.Spans, maxSpans)
	assert.Equal(t, "INLINE_CODE_9999", e.Spans[maxSpans-1].Token)
	assert.Equal(t, in, e.Restore(e.Text))
}
