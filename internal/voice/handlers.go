package voice

import (
	"context"
	"fmt"
	"log/slog"

	"docvoice/internal/models"
)

const searchLimit = 5

// HelpText is returned by "kibena help".
const HelpText = `Available commands:
- "Kibena read [topic]" - Read documentation about a topic
- "Kibena search [query]" - Search the documentation for a query
- "Kibena translate to [language] [topic]" - Translate and read documentation in another language
- "Kibena help" - Show this help message`

func notFound(topic string) Result {
	return Result{
		Success:  false,
		Message:  fmt.Sprintf("Could not find documentation about %s", topic),
		Response: fmt.Sprintf("I'm sorry, I couldn't find any information about %s.", topic),
	}
}

// firstSection returns the lowest-ID section mentioning topic. Store errors
// are logged and reported as not found.
func (p *Processor) firstSection(ctx context.Context, topic string) (models.Section, bool) {
	sections, err := p.store.FindSections(ctx, topic, 1)
	if err != nil {
		p.logger.Error("document lookup failed", slog.String("topic", topic), slog.String("error", err.Error()))
		return models.Section{}, false
	}
	if len(sections) == 0 {
		return models.Section{}, false
	}
	return sections[0], true
}

// speak returns an audio URL for text, or "" when synthesis failed.
func (p *Processor) speak(ctx context.Context, text, lang string) string {
	url, err := p.speaker.AudioURL(ctx, p.speech.ForSpeech(text), lang)
	if err != nil {
		p.logger.Warn("speech synthesis failed, answering without audio",
			slog.String("language", lang), slog.String("error", err.Error()))
		return ""
	}
	return url
}

func (p *Processor) handleRead(ctx context.Context, args []string) Result {
	topic := args[0]
	p.logger.Debug("read command", slog.String("topic", topic))

	section, ok := p.firstSection(ctx, topic)
	if !ok {
		return notFound(topic)
	}

	return Result{
		Success:   true,
		Message:   fmt.Sprintf("Reading about %s", topic),
		Response:  section.Content,
		AudioURL:  p.speak(ctx, section.Content, models.BaseLanguage),
		SectionID: section.ID,
	}
}

func (p *Processor) handleSearch(ctx context.Context, args []string) Result {
	query := args[0]
	p.logger.Debug("search command", slog.String("query", query))

	sections, err := p.store.FindSections(ctx, query, searchLimit)
	if err != nil {
		p.logger.Error("document search failed", slog.String("query", query), slog.String("error", err.Error()))
		sections = nil
	}
	if len(sections) == 0 {
		return Result{
			Success:  false,
			Message:  fmt.Sprintf("No results found for %s", query),
			Response: fmt.Sprintf("I'm sorry, I couldn't find any information about %s.", query),
		}
	}

	hits := make([]SearchHit, 0, len(sections))
	for _, s := range sections {
		hits = append(hits, SearchHit{ID: s.ID, Title: s.Title, URL: s.URL})
	}
	return Result{
		Success:  true,
		Message:  fmt.Sprintf("Found %d results for %s", len(hits), query),
		Response: hits,
	}
}

func (p *Processor) handleTranslate(ctx context.Context, args []string) Result {
	language, topic := args[0], args[1]
	p.logger.Debug("translate command", slog.String("language", language), slog.String("topic", topic))

	lang, ok := models.LanguageByName(language)
	if !ok {
		return Result{
			Success:  false,
			Message:  fmt.Sprintf("Unsupported language: %s", language),
			Response: fmt.Sprintf("I'm sorry, %s is not supported for translation.", language),
		}
	}

	section, ok := p.firstSection(ctx, topic)
	if !ok {
		return notFound(topic)
	}

	out := p.translator.GetOrCreate(ctx, section, lang)
	if out.Fallback() {
		p.logger.Warn("translation unavailable, using original content",
			slog.Int64("section_id", section.ID), slog.String("language", lang), slog.Any("error", out.Err))
	}

	return Result{
		Success:   true,
		Message:   fmt.Sprintf("Translated content about %s to %s", topic, language),
		Response:  out.Text,
		AudioURL:  p.speak(ctx, out.Text, lang),
		SectionID: section.ID,
		Language:  lang,
	}
}

func (p *Processor) handleHelp(_ context.Context, _ []string) Result {
	return Result{
		Success:  true,
		Message:  "Help command",
		Response: HelpText,
	}
}
