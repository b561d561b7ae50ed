package api

import (
	"container/list"
	"sync"

	"github.com/google/uuid"

	"github.com/lepinkainen/marginalia/internal/search"
)

// DefaultMaxSessions bounds the session table when no limit is configured.
const DefaultMaxSessions = 256

type sessionEntry struct {
	id   string
	orch *search.Orchestrator
}

// sessionTable maps session ids to orchestrators. When full, the session
// used least recently is evicted.
type sessionTable struct {
	mu    sync.Mutex
	max   int
	order *list.List
	byID  map[string]*list.Element
}

func newSessionTable(max int) *sessionTable {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &sessionTable{
		max:   max,
		order: list.New(),
		byID:  make(map[string]*list.Element),
	}
}

// add stores orch under a fresh id and returns the id.
func (t *sessionTable) add(orch *search.Orchestrator) string {
	id := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.byID[id] = t.order.PushFront(&sessionEntry{id: id, orch: orch})
	for t.order.Len() > t.max {
		oldest := t.order.Back()
		t.order.Remove(oldest)
		delete(t.byID, oldest.Value.(*sessionEntry).id)
	}
	return id
}

// get returns the orchestrator for id and marks it as used.
func (t *sessionTable) get(id string) (*search.Orchestrator, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	t.order.MoveToFront(el)
	return el.Value.(*sessionEntry).orch, true
}

func (t *sessionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}
