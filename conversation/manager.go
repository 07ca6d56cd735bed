package conversation

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/voicebridge/logger"
)

// Direction indicates which way an exchange was translated.
type Direction string

const (
	// DirectionForward is source language to target language.
	DirectionForward Direction = "forward"
	// DirectionReverse is target language back to source language.
	DirectionReverse Direction = "reverse"
)

// Entry is one completed exchange in a conversation.
type Entry struct {
	// Original is the text before translation.
	Original string `json:"original"`
	// Translated is the text after translation.
	Translated string `json:"translated"`
	// Direction indicates the translation direction.
	Direction Direction `json:"direction"`
	// Timestamp is when the translation completed. Zero means "now" on append.
	Timestamp time.Time `json:"timestamp"`
}

// Config bounds per-conversation history.
type Config struct {
	// MaxAge drops entries older than this.
	MaxAge time.Duration `json:"max_age" mapstructure:"max_age"`
	// MaxEntries keeps at most this many recent entries.
	MaxEntries int `json:"max_entries" mapstructure:"max_entries"`
}

// DefaultConfig returns the context window defaults: 30 minutes, 10 entries.
func DefaultConfig() Config {
	return Config{
		MaxAge:     30 * time.Minute,
		MaxEntries: 10,
	}
}

// Manager holds bounded conversation histories keyed by conversation id.
// All methods are safe for concurrent use.
type Manager struct {
	cfg Config
	log *logger.Logger

	mu        sync.Mutex
	histories map[string][]Entry
}

// NewManager creates a Manager from config.
func NewManager(cfg Config) *Manager {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultConfig().MaxAge
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	return &Manager{
		cfg:       cfg,
		log:       logger.Get("conversation"),
		histories: make(map[string][]Entry),
	}
}

// AddEntry appends an exchange to the conversation's history, stamping the
// current time when the entry carries none, then prunes. Entries land in
// completion order: the append is serialized under the manager's mutex.
func (m *Manager) AddEntry(conversationID string, entry Entry) {
	if conversationID == "" {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.histories[conversationID] = append(m.histories[conversationID], entry)
	m.pruneLocked(conversationID)
}

// GetContext prunes, then renders the conversation as a chronologically
// ordered transcript, one line per exchange with a direction arrow between
// original and translated text. Returns "" for an unknown or empty id.
func (m *Manager) GetContext(conversationID string) string {
	if conversationID == "" {
		return ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(conversationID)
	entries := m.histories[conversationID]
	if len(entries) == 0 {
		return ""
	}

	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var b strings.Builder
	for i, e := range ordered {
		if i > 0 {
			b.WriteByte('\n')
		}
		arrow := "→"
		if e.Direction == DirectionReverse {
			arrow = "←"
		}
		b.WriteString(e.Original)
		b.WriteString(" ")
		b.WriteString(arrow)
		b.WriteString(" ")
		b.WriteString(e.Translated)
	}
	return b.String()
}

// Entries returns a copy of the conversation's current entries, pruned.
func (m *Manager) Entries(conversationID string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(conversationID)
	entries := m.histories[conversationID]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// PruneOld removes entries over the age limit and truncates to the entry
// limit for one conversation. Pruning an already-pruned history is a no-op.
func (m *Manager) PruneOld(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(conversationID)
}

// Clear removes one conversation's history, or every history when id is "".
func (m *Manager) Clear(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conversationID == "" {
		m.histories = make(map[string][]Entry)
		return
	}
	delete(m.histories, conversationID)
}

// pruneLocked drops entries older than MaxAge, then keeps only the most
// recent MaxEntries, preserving order. Must be called with the mutex held.
func (m *Manager) pruneLocked(conversationID string) {
	entries := m.histories[conversationID]
	if len(entries) == 0 {
		return
	}

	cutoff := time.Now().Add(-m.cfg.MaxAge)
	live := entries[:0]
	for _, e := range entries {
		if e.Timestamp.After(cutoff) {
			live = append(live, e)
		}
	}

	if len(live) > m.cfg.MaxEntries {
		live = live[len(live)-m.cfg.MaxEntries:]
	}

	if len(live) == 0 {
		delete(m.histories, conversationID)
		return
	}
	m.histories[conversationID] = live
}
