package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docvoice/internal/normalize"
)

// Processor dispatches utterances to command handlers. It keeps no state
// between calls.
type Processor struct {
	store      DocumentStore
	translator Translator
	speaker    Speaker
	speech     *normalize.Normalizer
	patterns   []Pattern
	handlers   map[Kind]HandlerFunc
	observer   Observer
	logger     *slog.Logger
}

type Option func(*Processor)

func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithNormalizer sets how content is rewritten before it is spoken.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Processor) {
		if n != nil {
			p.speech = n
		}
	}
}

// WithPatterns replaces the trigger table. Order is precedence.
func WithPatterns(patterns []Pattern) Option {
	return func(p *Processor) { p.patterns = patterns }
}

// WithHandler overrides the handler for one command kind.
func WithHandler(k Kind, h HandlerFunc) Option {
	return func(p *Processor) { p.handlers[k] = h }
}

func WithObserver(o Observer) Option {
	return func(p *Processor) { p.observer = o }
}

func NewProcessor(store DocumentStore, translator Translator, speaker Speaker, opts ...Option) *Processor {
	p := &Processor{
		store:      store,
		translator: translator,
		speaker:    speaker,
		speech:     normalize.New(nil),
		patterns:   DefaultPatterns,
		logger:     slog.Default(),
	}
	p.handlers = map[Kind]HandlerFunc{
		KindRead:      p.handleRead,
		KindSearch:    p.handleSearch,
		KindTranslate: p.handleTranslate,
		KindHelp:      p.handleHelp,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch runs the first command whose pattern matches the lowercased
// utterance. It always returns a well-formed Result.
func (p *Processor) Dispatch(ctx context.Context, utterance string) (res Result) {
	if strings.TrimSpace(utterance) == "" {
		return Result{Success: false, Message: "No command recognized", Response: nil}
	}

	m, ok := MatchCommand(p.patterns, strings.ToLower(utterance))
	h := p.handlers[m.Kind]
	if !ok || h == nil {
		p.observe("unknown", false)
		return Result{
			Success:  false,
			Message:  "Unknown command",
			Response: fmt.Sprintf("I'm sorry, I didn't understand the command: %s", utterance),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("command handler panicked", slog.String("kind", m.Kind.String()), slog.Any("panic", r))
			res = Result{
				Success:  false,
				Message:  "Command failed",
				Response: fmt.Sprintf("I'm sorry, something went wrong with the command: %s", utterance),
			}
		}
		p.observe(m.Kind.String(), res.Success)
	}()

	return h(ctx, m.Args)
}

func (p *Processor) observe(kind string, success bool) {
	if p.observer != nil {
		p.observer.CommandProcessed(kind, success)
	}
}
