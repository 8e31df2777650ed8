package userdesk

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/louisbranch/userdesk/internal/platform/timeouts"
	"github.com/louisbranch/userdesk/internal/services/userdesk/roster"
)

// ErrUserNotFound is returned when an edit targets a row the view does not
// hold.
var ErrUserNotFound = errors.New("user not found")

// Directory is the remote user collection the manager mirrors.
type Directory interface {
	List(ctx context.Context) ([]roster.User, error)
	Create(ctx context.Context, form roster.Form) (roster.User, error)
	Update(ctx context.Context, id roster.ID, form roster.Form) error
	Delete(ctx context.Context, id roster.ID) error
}

// Manager owns the state of one displayed user-management page and issues
// the remote calls that change it.
//
// The mutex only guards state reads and writes. Remote calls run unlocked, so
// overlapping submits or deletes are neither serialized nor de-duplicated:
// each applies its own outcome to whatever the state is when it resolves.
type Manager struct {
	directory Directory
	timeout   time.Duration

	mu    sync.Mutex
	state roster.State
}

// NewManager builds a manager with the initial empty state. A non-positive
// timeout falls back to timeouts.RemoteRequest.
func NewManager(directory Directory, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = timeouts.RemoteRequest
	}
	return &Manager{
		directory: directory,
		timeout:   timeout,
		state:     roster.New(),
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() roster.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Load replaces the collection with the remote list. On failure the
// collection is kept and the fetch failure is recorded.
func (m *Manager) Load(ctx context.Context) {
	ctx, cancel := m.remoteContext(ctx)
	defer cancel()

	users, err := m.directory.List(ctx)
	if err != nil {
		log.Printf("load users: %v", err)
		m.apply(func(s roster.State) roster.State { return s.Failed(roster.FailureFetch) })
		return
	}
	m.apply(func(s roster.State) roster.State { return s.Loaded(users) })
}

// UpdateField changes one form field locally.
func (m *Manager) UpdateField(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := m.state.WithField(field, value)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// Submit sends the form: PUT when editing, POST when creating. On success the
// collection is updated and the form reset; on failure form and mode stay as
// they were and the save failure is recorded.
func (m *Manager) Submit(ctx context.Context) {
	m.mu.Lock()
	form := m.state.Form
	mode := m.state.Mode
	m.mu.Unlock()

	ctx, cancel := m.remoteContext(ctx)
	defer cancel()

	if id, editing := mode.EditingID(); editing {
		if err := m.directory.Update(ctx, id, form); err != nil {
			log.Printf("save user %s: %v", id, err)
			m.apply(func(s roster.State) roster.State { return s.Failed(roster.FailureSave) })
			return
		}
		m.apply(func(s roster.State) roster.State { return s.Updated(id, form) })
		return
	}

	created, err := m.directory.Create(ctx, form)
	if err != nil {
		log.Printf("save user: %v", err)
		m.apply(func(s roster.State) roster.State { return s.Failed(roster.FailureSave) })
		return
	}
	m.apply(func(s roster.State) roster.State { return s.Created(created) })
}

// BeginEdit loads the row with the given id into the form.
func (m *Manager) BeginEdit(id roster.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.state.Find(id)
	if !ok {
		return ErrUserNotFound
	}
	m.state = m.state.BeginEdit(user)
	return nil
}

// Delete removes the record remotely and then locally. On failure the
// collection is kept and the delete failure is recorded.
func (m *Manager) Delete(ctx context.Context, id roster.ID) {
	ctx, cancel := m.remoteContext(ctx)
	defer cancel()

	if err := m.directory.Delete(ctx, id); err != nil {
		log.Printf("delete user %s: %v", id, err)
		m.apply(func(s roster.State) roster.State { return s.Failed(roster.FailureDelete) })
		return
	}
	m.apply(func(s roster.State) roster.State { return s.Deleted(id) })
}

func (m *Manager) apply(transition func(roster.State) roster.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = transition(m.state)
}

// remoteContext detaches the call from the caller's cancellation: a page
// that goes away does not abort a call already in flight.
func (m *Manager) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
}
