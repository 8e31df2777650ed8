package userdesk

import (
	"container/list"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/userdesk/internal/platform/id"
)

const (
	// viewTTL controls how long an idle page instance stays addressable.
	viewTTL = 24 * time.Hour
	// viewCleanupInterval controls how often expired views are purged.
	viewCleanupInterval = 30 * time.Minute
	// maxViews bounds the registry; the least recently used view is evicted
	// once it is full.
	maxViews = 1000
)

// ErrViewNotFound is returned for unknown or expired view ids.
var ErrViewNotFound = errors.New("view not found")

type view struct {
	id        string
	manager   *Manager
	expiresAt time.Time
}

// Views tracks the live page instances. Each full page load gets its own
// manager, so two browser tabs never share form or mode.
type Views struct {
	mu          sync.Mutex
	views       map[string]*list.Element
	recency     *list.List
	lastCleanup time.Time
	ttl         time.Duration
	limit       int
	now         func() time.Time
}

// NewViews builds an empty registry.
func NewViews() *Views {
	return &Views{
		views:   make(map[string]*list.Element),
		recency: list.New(),
		ttl:     viewTTL,
		limit:   maxViews,
		now:     time.Now,
	}
}

// Create registers manager under a fresh id, evicting the least recently
// used view when the registry is full.
func (v *Views) Create(manager *Manager) (string, error) {
	if manager == nil {
		return "", errors.New("manager is required")
	}
	viewID, err := id.NewID()
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	v.cleanupLocked(now)
	for v.limit > 0 && v.recency.Len() >= v.limit {
		v.removeLocked(v.recency.Back())
	}
	v.views[viewID] = v.recency.PushFront(&view{id: viewID, manager: manager, expiresAt: now.Add(v.ttl)})
	return viewID, nil
}

// Get returns the manager of a live view and extends its lifetime. Expiry
// and eviction only drop the registry entry; calls already running on the
// manager finish.
func (v *Views) Get(viewID string) (*Manager, error) {
	viewID = strings.TrimSpace(viewID)
	if !id.Valid(viewID) {
		return nil, ErrViewNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	v.cleanupLocked(now)
	elem, ok := v.views[viewID]
	if !ok {
		return nil, ErrViewNotFound
	}
	entry := elem.Value.(*view)
	if now.After(entry.expiresAt) {
		v.removeLocked(elem)
		return nil, ErrViewNotFound
	}
	entry.expiresAt = now.Add(v.ttl)
	v.recency.MoveToFront(elem)
	return entry.manager, nil
}

// Len reports the number of registered views, expired ones included until
// the next purge.
func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.recency.Len()
}

func (v *Views) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := v.recency.Remove(elem).(*view)
	delete(v.views, entry.id)
}

func (v *Views) cleanupLocked(now time.Time) {
	if now.Sub(v.lastCleanup) < viewCleanupInterval {
		return
	}
	// The back of the list holds the least recently used views, so expired
	// entries are found there first.
	for elem := v.recency.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*view).expiresAt) {
			v.removeLocked(elem)
		}
		elem = prev
	}
	v.lastCleanup = now
}
