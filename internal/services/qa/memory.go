package qa

import (
	"strings"
	"sync"

	"github.com/ternarybob/fiscus/internal/models"
)

// ConversationMemory keeps a bounded history of question/answer exchanges,
// oldest evicted first. Session-local only; never persisted.
type ConversationMemory struct {
	mu         sync.Mutex
	maxHistory int
	history    []models.ConversationExchange
}

// NewConversationMemory creates a memory bounded to maxHistory exchanges
func NewConversationMemory(maxHistory int) *ConversationMemory {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &ConversationMemory{maxHistory: maxHistory}
}

// AddExchange appends an exchange, evicting the oldest beyond the bound
func (m *ConversationMemory) AddExchange(question, answer string, sources []models.SourceRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, models.ConversationExchange{
		Question: question,
		Answer:   answer,
		Sources:  sources,
	})
	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
}

// Context renders the last n exchanges as Q:/A: lines for use as optional
// context in future queries
func (m *ConversationMemory) Context(n int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return ""
	}
	if n <= 0 || n > len(m.history) {
		n = len(m.history)
	}

	var parts []string
	for _, exchange := range m.history[len(m.history)-n:] {
		parts = append(parts, "Q: "+exchange.Question)
		parts = append(parts, "A: "+exchange.Answer)
	}
	return strings.Join(parts, "\n")
}

// All returns a copy of the full history, oldest first
func (m *ConversationMemory) All() []models.ConversationExchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ConversationExchange(nil), m.history...)
}

// Len returns the current history length
func (m *ConversationMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Clear drops the history
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}
