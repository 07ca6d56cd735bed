package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/kbukum/voicebridge/cache"
)

// session tracks one run's counters. Created on start, discarded on
// stop; counters use atomics so concurrent segments update them without
// touching the orchestrator lock.
type session struct {
	startedAt      time.Time
	conversationID string

	segments       atomic.Uint64
	succeeded      atomic.Uint64
	failed         atomic.Uint64
	synthFailures  atomic.Uint64
	totalLatencyNs atomic.Int64
}

func (s *session) recordResult(r *Result) {
	s.segments.Add(1)
	s.totalLatencyNs.Add(int64(r.Latency))
	switch {
	case r.Success:
		s.succeeded.Add(1)
	case r.SynthesisFailed:
		// Translation succeeded, audio did not.
		s.succeeded.Add(1)
		s.synthFailures.Add(1)
	default:
		s.failed.Add(1)
	}
}

// Status is a read-only snapshot of the orchestrator lifecycle and the
// active session.
type Status struct {
	State          State         `json:"state"`
	Running        bool          `json:"running"`
	ConversationID string        `json:"conversation_id,omitempty"`
	StartedAt      time.Time     `json:"started_at,omitempty"`
	Uptime         time.Duration `json:"uptime,omitempty"`

	SegmentsProcessed     uint64 `json:"segments_processed"`
	TranslationsSucceeded uint64 `json:"translations_succeeded"`
	TranslationsFailed    uint64 `json:"translations_failed"`
}

// PerformanceMetrics summarizes throughput and latency for the active
// session.
type PerformanceMetrics struct {
	Uptime            time.Duration `json:"uptime"`
	SegmentsProcessed uint64        `json:"segments_processed"`
	SuccessRate       float64       `json:"success_rate"`
	ErrorRate         float64       `json:"error_rate"`
	SynthesisFailures uint64        `json:"synthesis_failures"`
	AverageLatency    time.Duration `json:"average_latency"`
	Cache             cache.Stats   `json:"cache"`
}

func (s *session) snapshot(state State) Status {
	st := Status{
		State:   state,
		Running: state == StateRunning,
	}
	if s == nil {
		return st
	}
	st.ConversationID = s.conversationID
	st.StartedAt = s.startedAt
	st.Uptime = time.Since(s.startedAt)
	st.SegmentsProcessed = s.segments.Load()
	st.TranslationsSucceeded = s.succeeded.Load()
	st.TranslationsFailed = s.failed.Load()
	return st
}

func (s *session) metrics(cacheStats cache.Stats) PerformanceMetrics {
	if s == nil {
		return PerformanceMetrics{Cache: cacheStats}
	}
	m := PerformanceMetrics{
		Uptime:            time.Since(s.startedAt),
		SegmentsProcessed: s.segments.Load(),
		SynthesisFailures: s.synthFailures.Load(),
		Cache:             cacheStats,
	}
	if m.SegmentsProcessed > 0 {
		m.SuccessRate = float64(s.succeeded.Load()) / float64(m.SegmentsProcessed)
		m.ErrorRate = float64(s.failed.Load()) / float64(m.SegmentsProcessed)
	}
	if m.SegmentsProcessed > 0 {
		m.AverageLatency = time.Duration(s.totalLatencyNs.Load() / int64(m.SegmentsProcessed))
	}
	return m
}
