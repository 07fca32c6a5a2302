package cache

import (
	"container/list"
	"strings"
	"sync"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// locationMemo keeps the most recently resolved locations in process so a
// repeated search skips both the store and the geocoder. Locations never
// expire, so the only eviction is by recency once capacity is reached.
type locationMemo struct {
	capacity int
	mu       sync.Mutex
	order    *list.List // front is most recently used
	byQuery  map[string]*list.Element
}

type memoEntry struct {
	query string
	loc   domain.Location
}

func newLocationMemo(capacity int) *locationMemo {
	return &locationMemo{
		capacity: capacity,
		order:    list.New(),
		byQuery:  make(map[string]*list.Element, capacity),
	}
}

// memoKey folds the surrounding whitespace a client may send with the same
// search text.
func memoKey(searchQuery string) string {
	return strings.TrimSpace(searchQuery)
}

func (m *locationMemo) lookup(searchQuery string) (domain.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.byQuery[memoKey(searchQuery)]
	if !ok {
		return domain.Location{}, false
	}
	m.order.MoveToFront(el)
	return el.Value.(*memoEntry).loc, true
}

// remember records loc under its search text. Unpersisted locations are
// ignored; the memo only ever answers with a stored id.
func (m *locationMemo) remember(searchQuery string, loc domain.Location) {
	if loc.ID <= 0 {
		return
	}
	key := memoKey(searchQuery)

	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.byQuery[key]; ok {
		el.Value.(*memoEntry).loc = loc
		m.order.MoveToFront(el)
		return
	}
	m.byQuery[key] = m.order.PushFront(&memoEntry{query: key, loc: loc})

	for m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.byQuery, oldest.Value.(*memoEntry).query)
	}
}

func (m *locationMemo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
