// Package metrics exposes Prometheus counters for commands, translations
// and speech synthesis. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Commands     *prometheus.CounterVec
	Translations *prometheus.CounterVec
	Speech       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docvoice",
			Name:      "voice_commands_total",
			Help:      "Voice commands dispatched, by command and success.",
		}, []string{"command", "success"}),
		Translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docvoice",
			Name:      "translations_total",
			Help:      "Section translations served, by source.",
		}, []string{"source"}),
		Speech: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docvoice",
			Name:      "speech_requests_total",
			Help:      "Speech synthesis requests, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.Commands, m.Translations, m.Speech)
	return m
}

func (m *Metrics) CommandProcessed(kind string, success bool) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) TranslationDone(source string) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(source).Inc()
}

func (m *Metrics) SpeechDone(result string) {
	if m == nil {
		return
	}
	m.Speech.WithLabelValues(result).Inc()
}
