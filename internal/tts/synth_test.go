package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{name: "fits", text: "hello world", size: 20, want: []string{"hello world"}},
		{name: "breaks on words", text: "one two three four", size: 8, want: []string{"one two", "three", "four"}},
		{name: "long word", text: "abcdefghij xy", size: 4, want: []string{"abcd", "efgh", "ij", "xy"}},
		{name: "collapses whitespace", text: "  a \n\n b  ", size: 10, want: []string{"a b"}},
		{name: "empty", text: "   ", size: 10, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitText(tt.text, tt.size))
		})
	}
}

func TestSplitTextRespectsSize(t *testing.T) {
	text := strings.Repeat("Mfano wa maandishi ya Kiswahili kwa sauti. ", 20)
	for _, c := range splitText(text, DefaultChunkSize) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), DefaultChunkSize)
	}
}

type recorder []string

func (r *recorder) SpeechDone(result string) { *r = append(*r, result) }

func newTestSynth(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Synthesizer, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	s, err := NewSynthesizer(Config{MediaRoot: root, MediaURL: "/media", Endpoint: srv.URL, ChunkSize: 11}, opts...)
	require.NoError(t, err)
	return s, root
}

func TestAudioURLSynthesizesAndCaches(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	var langs []string
	rec := &recorder{}
	s, root := newTestSynth(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		mu.Lock()
		langs = append(langs, r.URL.Query().Get("tl"))
		mu.Unlock()
		_, _ = w.Write([]byte("mp3:" + r.URL.Query().Get("q") + ";"))
	}, WithRecorder(rec))
	ctx := context.Background()

	url, err := s.AudioURL(ctx, "hello there world", "zh")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/audio/"))
	assert.True(t, strings.HasSuffix(url, "_zh.mp3"))
	assert.Equal(t, int32(2), calls.Load())
	mu.Lock()
	assert.Equal(t, []string{"zh-CN", "zh-CN"}, langs)
	mu.Unlock()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(url, "/media/"))))
	require.NoError(t, err)
	assert.Equal(t, "mp3:hello there;mp3:world;", string(data))

	again, err := s.AudioURL(ctx, "hello there world", "zh")
	require.NoError(t, err)
	assert.Equal(t, url, again)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"synthesized", "cached"}, []string(*rec))
}

func TestSynthesizeErrors(t *testing.T) {
	s, root := newTestSynth(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	ctx := context.Background()

	_, err := s.Synthesize(ctx, "  ", "en")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = s.Synthesize(ctx, "hello", "tlh")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = s.Synthesize(ctx, "hello", "en")
	assert.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "audio"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilePathDependsOnLanguage(t *testing.T) {
	s, _ := newTestSynth(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.NotEqual(t, s.filePath("hello", "en"), s.filePath("hello", "fr"))
	assert.Equal(t, s.filePath("hello", "en"), s.filePath("hello", "en"))
}
