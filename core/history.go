package orchestration

import (
	"sync"

	"github.com/voxflow/voxflow-core/core/llms"
)

const defaultHistoryLimit = 10

// conversationHistory is the bounded per-call transcript window sent to the
// reasoning backend. Turns beyond the limit are dropped oldest-first.
type conversationHistory struct {
	mu    sync.Mutex
	turns []llms.Turn
	limit int
}

func newConversationHistory(limit int) *conversationHistory {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &conversationHistory{limit: limit}
}

func (h *conversationHistory) Append(turns ...llms.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, turns...)
	if overflow := len(h.turns) - h.limit; overflow > 0 {
		h.turns = h.turns[overflow:]
	}
}

// Turns returns a copy of the current window, oldest first.
func (h *conversationHistory) Turns() []llms.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := make([]llms.Turn, len(h.turns))
	copy(turns, h.turns)
	return turns
}

func (h *conversationHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
