// Package tts turns text into cached MP3 files.
package tts

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"docvoice/internal/models"
)

const (
	DefaultEndpoint  = "https://translate.google.com/translate_tts"
	DefaultTimeout   = 15 * time.Second
	DefaultChunkSize = 100
)

var (
	ErrEmptyText           = errors.New("empty text")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

type Config struct {
	// MediaRoot is the directory served at MediaURL; audio goes in MediaRoot/audio.
	MediaRoot string
	MediaURL  string
	Endpoint  string
	Timeout   time.Duration
	// ChunkSize caps the characters sent per request.
	ChunkSize int
}

// Recorder counts synthesis results.
type Recorder interface {
	SpeechDone(result string)
}

type Synthesizer struct {
	cfg      Config
	audioDir string
	client   *http.Client
	logger   *slog.Logger
	recorder Recorder
}

type Option func(*Synthesizer)

func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Synthesizer) { s.recorder = r }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Synthesizer) { s.client = c }
}

func NewSynthesizer(cfg Config, opts ...Option) (*Synthesizer, error) {
	if cfg.MediaRoot == "" {
		cfg.MediaRoot = "media"
	}
	if cfg.MediaURL == "" {
		cfg.MediaURL = "/media/"
	}
	if !strings.HasSuffix(cfg.MediaURL, "/") {
		cfg.MediaURL += "/"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}

	audioDir := filepath.Join(cfg.MediaRoot, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	s := &Synthesizer{
		cfg:      cfg,
		audioDir: audioDir,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// filePath names the cache file after a hash of text and language.
func (s *Synthesizer) filePath(text, lang string) string {
	sum := md5.Sum([]byte(text + "_" + lang))
	return filepath.Join(s.audioDir, hex.EncodeToString(sum[:])+"_"+lang+".mp3")
}

// Synthesize returns the path of an MP3 reading text in lang, creating it
// on first use.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string) (string, error) {
	path, cached, err := s.synthesize(ctx, text, lang)
	if s.recorder != nil {
		switch {
		case err != nil:
			s.recorder.SpeechDone("error")
		case cached:
			s.recorder.SpeechDone("cached")
		default:
			s.recorder.SpeechDone("synthesized")
		}
	}
	return path, err
}

func (s *Synthesizer) synthesize(ctx context.Context, text, lang string) (path string, cached bool, err error) {
	if strings.TrimSpace(text) == "" {
		return "", false, ErrEmptyText
	}
	if !models.IsSupported(lang) {
		return "", false, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	path = s.filePath(text, lang)
	if _, err := os.Stat(path); err == nil {
		return path, true, nil
	}

	chunks := splitText(text, s.cfg.ChunkSize)
	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := s.fetch(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return "", false, fmt.Errorf("tts chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	if err := writeAtomic(s.audioDir, path, audio.Bytes()); err != nil {
		return "", false, err
	}
	s.logger.Debug("synthesized audio", slog.String("path", path), slog.Int("chunks", len(chunks)))
	return path, false, nil
}

// AudioURL returns the public URL of the audio for text.
func (s *Synthesizer) AudioURL(ctx context.Context, text, lang string) (string, error) {
	path, err := s.Synthesize(ctx, text, lang)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(s.cfg.MediaRoot, path)
	if err != nil {
		return "", err
	}
	return s.cfg.MediaURL + filepath.ToSlash(rel), nil
}

func (s *Synthesizer) fetch(ctx context.Context, w io.Writer, chunk, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", speechLanguage(lang))
	q.Set("q", chunk)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; docvoice/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return nil
}

// speechLanguage maps a language tag to the voice the TTS endpoint expects.
func speechLanguage(lang string) string {
	if lang == "zh" {
		return "zh-CN"
	}
	return lang
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tts-*.mp3")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close audio: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store audio: %w", err)
	}
	return nil
}
