package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docvoice/internal/models"
	"docvoice/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperProvider "translates" by upper-casing everything except placeholder
// tokens, which are already upper case.
type upperProvider struct {
	calls []string
	err   error
}

func (p *upperProvider) Translate(_ context.Context, text, language string) (string, error) {
	p.calls = append(p.calls, language+":"+text)
	if p.err != nil {
		return "", p.err
	}
	return strings.ToUpper(text), nil
}

func seededStore(t *testing.T) (*storage.Memory, models.Section) {
	t.Helper()
	store := storage.NewMemory()
	saved, err := store.SaveSections(context.Background(), "https://docs.example.com/models/", []models.Section{
		{Title: "Models", Content: "Call `save()` to store it.", Level: models.LevelH1},
	})
	require.NoError(t, err)
	return store, saved[0]
}

func TestTranslateTextProtectsCode(t *testing.T) {
	provider := &upperProvider{}
	svc := NewService(provider, storage.NewMemory())

	out := svc.TranslateText(context.Background(), "Call `save()` then\n```python\nobj.save()\n```", "fr")

	require.Equal(t, SourceTranslated, out.Source)
	assert.Equal(t, "CALL `save()` THEN\n```python\nobj.save()\n```", out.Text)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, "French:Call INLINE_CODE_0001 then\nCODE_BLOCK_0000", provider.calls[0])
	assert.NotContains(t, provider.calls[0], "save()")
}

func TestTranslateTextBaseLanguage(t *testing.T) {
	provider := &upperProvider{}
	svc := NewService(provider, storage.NewMemory())

	out := svc.TranslateText(context.Background(), "hello", models.BaseLanguage)

	assert.Equal(t, Outcome{Text: "hello", Source: SourceOriginal}, out)
	assert.Empty(t, provider.calls)
}

func TestTranslateTextFallback(t *testing.T) {
	tests := []struct {
		name     string
		provider *upperProvider
		lang     string
		wantErr  error
	}{
		{name: "provider error", provider: &upperProvider{err: errors.New("quota exceeded")}, lang: "fr"},
		{name: "unsupported language", provider: &upperProvider{}, lang: "tlh", wantErr: ErrUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.provider, storage.NewMemory())
			out := svc.TranslateText(context.Background(), "Use `x`.", tt.lang)

			assert.True(t, out.Fallback())
			assert.Equal(t, "Use `x`.", out.Text)
			require.Error(t, out.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, out.Err, tt.wantErr)
			}
		})
	}
}

func TestGetOrCreateCachesTranslation(t *testing.T) {
	store, section := seededStore(t)
	provider := &upperProvider{}
	svc := NewService(provider, store)
	ctx := context.Background()

	first := svc.GetOrCreate(ctx, section, "de")
	require.Equal(t, SourceTranslated, first.Source)
	assert.Equal(t, "CALL `save()` TO STORE IT.", first.Text)

	second := svc.GetOrCreate(ctx, section, "de")
	assert.Equal(t, SourceCached, second.Source)
	assert.Equal(t, first.Text, second.Text)
	assert.Len(t, provider.calls, 1)

	tr, err := store.GetTranslation(ctx, section.ID, "de")
	require.NoError(t, err)
	assert.Equal(t, first.Text, tr.Content)
}

func TestGetOrCreateDoesNotStoreFallback(t *testing.T) {
	store, section := seededStore(t)
	provider := &upperProvider{err: errors.New("down")}
	svc := NewService(provider, store)
	ctx := context.Background()

	out := svc.GetOrCreate(ctx, section, "sw")
	assert.True(t, out.Fallback())
	assert.Equal(t, section.Content, out.Text)

	_, err := store.GetTranslation(ctx, section.ID, "sw")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetOrCreateBaseLanguage(t *testing.T) {
	store, section := seededStore(t)
	provider := &upperProvider{}
	svc := NewService(provider, store)

	out := svc.GetOrCreate(context.Background(), section, "en")
	assert.Equal(t, SourceOriginal, out.Source)
	assert.Equal(t, section.Content, out.Text)
	assert.Empty(t, provider.calls)
}

type countingRecorder map[string]int

func (c countingRecorder) TranslationDone(source string) { c[source]++ }

func TestGetOrCreateRecordsSource(t *testing.T) {
	store, section := seededStore(t)
	rec := countingRecorder{}
	svc := NewService(&upperProvider{}, store, WithRecorder(rec))

	svc.GetOrCreate(context.Background(), section, "fr")
	svc.GetOrCreate(context.Background(), section, "fr")

	assert.Equal(t, 1, rec["translated"])
	assert.Equal(t, 1, rec["cached"])
}

func TestTranslateAll(t *testing.T) {
	store, section := seededStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveTranslation(ctx, models.Translation{SectionID: section.ID, Language: "fr", Content: "old"}, false))

	provider := &upperProvider{}
	svc := NewService(provider, store, WithPause(0))

	sum, err := svc.TranslateAll(ctx, []string{"fr", "es"}, false)
	require.NoError(t, err)
	assert.Equal(t, Summary{Translated: 1, Skipped: 1}, sum)

	tr, err := store.GetTranslation(ctx, section.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, "old", tr.Content)

	sum, err = svc.TranslateAll(ctx, []string{"fr"}, true)
	require.NoError(t, err)
	assert.Equal(t, Summary{Translated: 1}, sum)

	tr, err = store.GetTranslation(ctx, section.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, "CALL `save()` TO STORE IT.", tr.Content)
}

func TestTranslateAllCountsFailures(t *testing.T) {
	store, _ := seededStore(t)
	svc := NewService(&upperProvider{err: errors.New("down")}, store, WithPause(0))

	sum, err := svc.TranslateAll(context.Background(), []string{"zh"}, false)
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 1}, sum)
}

func TestTranslateAllRejectsUnsupportedLanguage(t *testing.T) {
	store, _ := seededStore(t)
	svc := NewService(&upperProvider{}, store)

	_, err := svc.TranslateAll(context.Background(), []string{"en"}, false)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}
