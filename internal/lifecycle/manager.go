package lifecycle

import (
	"context"
	"log"
	"sync"
	"time"

	"meetup-client/internal/gateway"
	"meetup-client/internal/listener"
	"meetup-client/internal/observability"
)

// Session bundles the coordinator and dispatcher serving one identity.
type Session struct {
	Coordinator *Coordinator
	Dispatcher  *Dispatcher
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
	unsub   func()
	refs    int
}

// Manager owns one coordinator per signed-in identity. The first acquisition
// starts the poll loop and opens the change-feed subscription; releasing the
// last reference cancels both. Nothing runs for identities nobody holds, so
// polling is inert when no user is present.
type Manager struct {
	gw        gateway.Gateway
	sub       listener.Subscriber
	interval  time.Duration
	staleness time.Duration

	onPhase          func(userID string, view PhaseView)
	onFriendsChanged func(userID string)

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager builds a manager. onPhase and onFriendsChanged are fanned out
// to the identity's presentation surfaces.
func NewManager(gw gateway.Gateway, sub listener.Subscriber, interval, staleness time.Duration, onPhase func(userID string, view PhaseView), onFriendsChanged func(userID string)) *Manager {
	return &Manager{
		gw:               gw,
		sub:              sub,
		interval:         interval,
		staleness:        staleness,
		onPhase:          onPhase,
		onFriendsChanged: onFriendsChanged,
		entries:          make(map[string]*entry),
	}
}

// Acquire returns the identity's session, creating it on first use. The
// returned release function must be called exactly once when the holder is
// done; it is safe to call more than once.
func (m *Manager) Acquire(userID string) (*Session, func()) {
	m.mu.Lock()
	e, ok := m.entries[userID]
	if !ok {
		e = m.start(userID)
		m.entries[userID] = e
	}
	e.refs++
	m.mu.Unlock()

	var once sync.Once
	return e.session, func() {
		once.Do(func() {
			m.release(userID)
		})
	}
}

func (m *Manager) start(userID string) *entry {
	ctx, cancel := context.WithCancel(context.Background())

	coord := NewCoordinator(userID, m.gw, m.staleness,
		func(view PhaseView) {
			if m.onPhase != nil {
				m.onPhase(userID, view)
			}
		},
		func() {
			if m.onFriendsChanged != nil {
				m.onFriendsChanged(userID)
			}
		},
	)
	session := &Session{Coordinator: coord, Dispatcher: NewDispatcher(coord, m.gw)}

	go coord.Run(ctx, m.interval)

	unsub := func() {}
	if m.sub != nil {
		release, err := m.sub.Subscribe(ctx, userID, func() {
			observability.IncForcedRefetch("change_feed")
			coord.Refresh(context.Background(), true)
		})
		if err != nil {
			// Polling still converges without the feed.
			log.Printf("change feed subscribe failed for user %s: %v", userID, err)
		} else {
			unsub = release
		}
	}

	return &entry{session: session, cancel: cancel, unsub: unsub}
}

func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	e.unsub()
	e.cancel()
	delete(m.entries, userID)
}

// Active reports how many identities currently have live coordinators.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Shutdown releases every live coordinator, regardless of references.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, e := range m.entries {
		e.unsub()
		e.cancel()
		delete(m.entries, userID)
	}
}
