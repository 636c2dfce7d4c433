// Package store holds the authoritative in-memory task collection.
//
// The collection is always ordered newest first (see domain.Newer). Every
// mutation bumps the revision and is delivered to subscribers before the
// mutating call returns, so any reader that re-fetches after a notification
// sees the new state. Delivery happens outside the data lock: a slow
// subscriber delays later writers, never readers.
package store

import (
	"slices"
	"sync"
	"time"

	dom "taskboard/internal/domain"

	"github.com/google/uuid"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeToggled ChangeKind = "toggled"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one applied mutation. Task is the state after the
// mutation, or the removed task for ChangeDeleted.
type Change struct {
	Kind     ChangeKind
	Task     dom.Task
	Revision uint64
}

// Subscriber receives changes in revision order. It runs on the mutating
// goroutine and must not call mutating Store methods; reads, Subscribe and
// unsubscribe are allowed.
type Subscriber func(Change)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides task ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the in-memory task collection. The zero value is not usable; use New.
type Store struct {
	id string

	mu       sync.RWMutex
	tasks    []dom.Task
	seq      uint64
	revision uint64

	// notifyMu guards the subscriber list and delivered. A revision is
	// delivered only after every lower one; turn wakes the waiters.
	notifyMu  sync.Mutex
	turn      *sync.Cond
	delivered uint64
	subs      map[int]Subscriber
	subOrder  []int
	nextSubID int

	now   func() time.Time
	newID func() string
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		id:    uuid.NewString(),
		subs:  make(map[int]Subscriber),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	s.turn = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies this store instance. It differs between processes and
// between stores in one process, so revision-keyed data from another store
// is never mistaken for this one's.
func (s *Store) ID() string {
	return s.id
}

// AddTask creates a task from in and inserts it in order. Input is not
// validated here; callers gate on the creation form.
func (s *Store) AddTask(in dom.NewTask) dom.Task {
	s.mu.Lock()
	s.seq++
	t := dom.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Completed:   false,
		CreatedAt:   s.now(),
		Seq:         s.seq,
	}
	s.insert(t)
	s.publishLocked(ChangeAdded, t)
	return t
}

// ToggleTask flips Completed on the task with the given id. It reports
// false and does nothing if the id is absent.
func (s *Store) ToggleTask(id string) (dom.Task, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return dom.Task{}, false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	s.publishLocked(ChangeToggled, t)
	return t, true
}

// UpdateTask replaces the user-editable fields of a task. ID, CreatedAt,
// Completed and position are kept.
func (s *Store) UpdateTask(id string, in dom.NewTask) (dom.Task, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return dom.Task{}, false
	}
	s.tasks[i].Title = in.Title
	s.tasks[i].Description = in.Description
	s.tasks[i].Priority = in.Priority
	t := s.tasks[i]
	s.publishLocked(ChangeUpdated, t)
	return t, true
}

// DeleteTask removes the task with the given id. It reports false and does
// nothing if the id is absent.
func (s *Store) DeleteTask(id string) (dom.Task, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return dom.Task{}, false
	}
	t := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.publishLocked(ChangeDeleted, t)
	return t, true
}

// Tasks returns the ordered collection. The slice is a copy; re-fetch after
// a change notification.
func (s *Store) Tasks() []dom.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Snapshot returns the ordered collection together with the revision it
// belongs to.
func (s *Store) Snapshot() ([]dom.Task, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks), s.revision
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (dom.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return dom.Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Revision increases by one on every mutation and on Load.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Load replaces the collection with tasks, typically at startup from a
// persistent mirror. Tasks with a repeated id are dropped, tasks without a
// sequence number are numbered after the others. Subscribers are not
// notified.
func (s *Store) Load(tasks []dom.Task) {
	s.mu.Lock()
	seen := make(map[string]struct{}, len(tasks))
	loaded := make([]dom.Task, 0, len(tasks))
	var maxSeq uint64
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		maxSeq = max(maxSeq, t.Seq)
		loaded = append(loaded, t)
	}
	for i := range loaded {
		if loaded[i].Seq == 0 {
			maxSeq++
			loaded[i].Seq = maxSeq
		}
	}
	slices.SortStableFunc(loaded, compare)

	s.tasks = loaded
	s.seq = maxSeq
	s.revision++
	rev := s.revision
	s.mu.Unlock()
	s.deliver(rev, nil)
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subOrder = append(s.subOrder, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			defer s.notifyMu.Unlock()
			delete(s.subs, id)
			s.subOrder = slices.DeleteFunc(s.subOrder, func(v int) bool { return v == id })
		})
	}
}

// publishLocked bumps the revision and hands the change to subscribers.
// It must be called with mu held and releases it before delivering.
func (s *Store) publishLocked(kind ChangeKind, t dom.Task) {
	s.revision++
	c := Change{Kind: kind, Task: t, Revision: s.revision}
	s.mu.Unlock()
	s.deliver(c.Revision, &c)
}

// deliver waits until every lower revision has been delivered, then calls
// the subscribers with c. A nil c only takes the turn.
func (s *Store) deliver(rev uint64, c *Change) {
	s.notifyMu.Lock()
	for s.delivered+1 != rev {
		s.turn.Wait()
	}
	var subs []Subscriber
	if c != nil {
		subs = make([]Subscriber, 0, len(s.subOrder))
		for _, id := range s.subOrder {
			subs = append(subs, s.subs[id])
		}
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.delivered = rev
		s.turn.Broadcast()
		s.notifyMu.Unlock()
	}()
	for _, fn := range subs {
		fn(*c)
	}
}

func (s *Store) insert(t dom.Task) {
	i, _ := slices.BinarySearchFunc(s.tasks, t, compare)
	s.tasks = slices.Insert(s.tasks, i, t)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t dom.Task) bool { return t.ID == id })
}

func compare(a, b dom.Task) int {
	switch {
	case dom.Newer(a, b):
		return -1
	case dom.Newer(b, a):
		return 1
	}
	return 0
}
