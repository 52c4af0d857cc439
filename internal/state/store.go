// Package state holds the persisted, observable application state.
//
// The store is an explicitly constructed object: the CLI builds one at
// startup and hands it to every component that needs it.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/Mohsinsiddi/tokenforge/internal/logging"
)

// Listener is notified after a path it subscribed to changes.
// Ancestor listeners receive the current ancestor value and a nil old value.
type Listener interface {
	StateChanged(newValue, oldValue any, path Path)
}

// ListenerFunc adapts a function to Listener. Every registration of a
// ListenerFunc is distinct because functions are not comparable.
type ListenerFunc func(newValue, oldValue any, path Path)

func (f ListenerFunc) StateChanged(newValue, oldValue any, path Path) { f(newValue, oldValue, path) }

type subscription struct {
	l     Listener
	unsub func()
}

// Store is the keyed observable store.
type Store struct {
	mu        sync.Mutex
	state     ApplicationState
	listeners map[Path][]*subscription

	storage Storage
	key     string
	lggr    logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithStorage sets the durable storage. The default is an in-memory storage.
func WithStorage(st Storage) Option {
	return func(s *Store) { s.storage = st }
}

// WithLogger sets the logger used for persistence and listener failures.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.lggr = l }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New builds a store from the default state merged with whatever the
// storage holds. Each stored top-level section replaces its default; fields
// missing inside a stored section keep their default values.
func New(opts ...Option) *Store {
	s := &Store{
		state:     Default(),
		listeners: make(map[Path][]*subscription),
		storage:   NewMemoryStorage(),
		key:       StorageKey,
		lggr:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// Get returns the value at path. ok is false when the path is unknown or a
// segment along it (including a nil leaf record) is absent.
func (s *Store) Get(path Path) (any, bool) {
	f, ok := fields[path]
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.get(&s.state)
}

// Set overwrites the value at path, notifies listeners of path and of every
// ancestor, then persists. It returns only after all of that is done.
func (s *Store) Set(path Path, value any) error {
	f, ok := fields[path]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPath, string(path))
	}

	s.mu.Lock()
	old, _ := f.get(&s.state)
	if err := f.set(&s.state, value); err != nil {
		s.mu.Unlock()
		return err
	}
	cur, _ := f.get(&s.state)
	batch := s.collect(path, cur, old)
	s.mu.Unlock()

	s.fanOut(batch)
	s.persist()
	s.lggr.Debugw("State updated", "path", path)
	return nil
}

// Subscribe registers l for path and returns a function that removes it.
// Registering a comparable listener twice on the same path returns the
// existing registration.
func (s *Store) Subscribe(path Path, l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if reflect.TypeOf(l).Comparable() {
		for _, sub := range s.listeners[path] {
			if reflect.TypeOf(sub.l) == reflect.TypeOf(l) && sub.l == l {
				return sub.unsub
			}
		}
	}

	sub := &subscription{l: l}
	sub.unsub = func() { s.remove(path, sub) }
	s.listeners[path] = append(s.listeners[path], sub)
	return sub.unsub
}

// SubscribeFunc is Subscribe for a plain function. Go funcs are not
// comparable, so every call adds a new registration and the same fn
// subscribed twice is called twice. Use a comparable Listener, such as a
// pointer to a struct, when duplicate registrations must collapse.
func (s *Store) SubscribeFunc(path Path, fn func(newValue, oldValue any, path Path)) (unsubscribe func()) {
	return s.Subscribe(path, ListenerFunc(fn))
}

func (s *Store) remove(path Path, target *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.listeners[path]
	for i, sub := range subs {
		if sub == target {
			// Copy so a fan-out iterating the previous slice is unaffected.
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			s.listeners[path] = next
			break
		}
	}
	if len(s.listeners[path]) == 0 {
		delete(s.listeners, path)
	}
}

// ResetSection restores one top-level section to its default and persists.
// It emits no path notifications.
func (s *Store) ResetSection(section string) error {
	s.mu.Lock()
	switch section {
	case SectionWallet:
		s.state.Wallet = defaultWallet()
	case SectionToken:
		s.state.Token = defaultToken()
	case SectionUI:
		s.state.UI = defaultUI()
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	s.mu.Unlock()

	s.persist()
	s.lggr.Debugw("State section reset", "section", section)
	return nil
}

// MarkSectionComplete adds name to ui.completedSections, notifies its
// listeners with the updated set, then persists.
func (s *Store) MarkSectionComplete(name string) {
	s.mu.Lock()
	s.state.UI.CompletedSections[name] = struct{}{}
	cur := s.state.UI.CompletedSections.Clone()
	batch := s.collect(PathCompletedSections, cur, nil)
	s.mu.Unlock()

	s.fanOut(batch)
	s.persist()
}

// IsSectionComplete reports whether name was marked complete.
func (s *Store) IsSectionComplete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UI.CompletedSections.Has(name)
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() ApplicationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ClearStorage removes the persisted blob. The in-memory state is kept.
func (s *Store) ClearStorage() error {
	if err := s.storage.Remove(s.key); err != nil {
		return fmt.Errorf("clearing stored state: %w", err)
	}
	return nil
}

// --- notification ---

type delivery struct {
	subs     []*subscription
	newValue any
	oldValue any
	path     Path
}

// collect snapshots the listeners to notify for a change at path.
// Callers hold s.mu.
func (s *Store) collect(path Path, cur, old any) []delivery {
	var batch []delivery
	if subs := s.listeners[path]; len(subs) > 0 {
		batch = append(batch, delivery{subs: subs, newValue: cur, oldValue: old, path: path})
	}
	for _, anc := range path.Ancestors() {
		subs := s.listeners[anc]
		if len(subs) == 0 {
			continue
		}
		v, _ := fields[anc].get(&s.state)
		batch = append(batch, delivery{subs: subs, newValue: v, path: anc})
	}
	return batch
}

func (s *Store) fanOut(batch []delivery) {
	for _, d := range batch {
		for _, sub := range d.subs {
			s.dispatch(sub.l, d)
		}
	}
}

// dispatch isolates one listener: a panic is logged and the fan-out goes on.
func (s *Store) dispatch(l Listener, d delivery) {
	defer func() {
		if r := recover(); r != nil {
			s.lggr.Errorw("State listener failed", "path", d.path, "panic", r)
		}
	}()
	l.StateChanged(d.newValue, d.oldValue, d.path)
}

// --- persistence ---

func (s *Store) persist() {
	s.mu.Lock()
	data, err := json.Marshal(s.state)
	s.mu.Unlock()
	if err != nil {
		s.lggr.Warnw("Failed to encode state", "err", err)
		return
	}
	if err := s.storage.Save(s.key, data); err != nil {
		s.lggr.Warnw("Failed to save state", "key", s.key, "err", err)
	}
}

func (s *Store) load() {
	data, err := s.storage.Load(s.key)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		s.lggr.Warnw("Failed to load state", "key", s.key, "err", err)
		return
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		s.lggr.Warnw("Stored state is not valid JSON, using defaults", "err", err)
		return
	}

	if raw, ok := present(sections, SectionWallet); ok {
		w := defaultWallet()
		if err := json.Unmarshal(raw, &w); err != nil {
			s.lggr.Warnw("Ignoring stored section", "section", SectionWallet, "err", err)
		} else {
			s.state.Wallet = w
		}
	}
	if raw, ok := present(sections, SectionToken); ok {
		t := defaultToken()
		if err := json.Unmarshal(raw, &t); err != nil {
			s.lggr.Warnw("Ignoring stored section", "section", SectionToken, "err", err)
		} else {
			s.state.Token = t
		}
	}
	if raw, ok := present(sections, SectionUI); ok {
		u := defaultUI()
		if err := json.Unmarshal(raw, &u); err != nil {
			s.lggr.Warnw("Ignoring stored section", "section", SectionUI, "err", err)
		} else {
			if u.CompletedSections == nil {
				u.CompletedSections = NewSectionSet()
			}
			s.state.UI = u
		}
	}
	s.lggr.Debugw("State restored from storage", "key", s.key)
}

func present(sections map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := sections[name]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}
