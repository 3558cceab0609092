package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"todo/internal/logging"
	"todo/internal/service"
)

var (
	// ErrReferenceNotReady is returned by create and edit until categories and
	// priorities have both been loaded.
	ErrReferenceNotReady = errors.New("categories and priorities are not loaded yet")

	// ErrNotFound is returned when a category or priority reference matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a category or priority name matches several records.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrStale is returned by LoadTasks when its response was discarded because
	// a newer load started or the store was closed.
	ErrStale = errors.New("response discarded")
)

// Backend is the slice of service.Service the store needs.
type Backend interface {
	ListTodos(ctx context.Context) ([]service.Todo, error)
	GetTodo(ctx context.Context, id string) (service.Todo, error)
	CreateTodo(ctx context.Context, in service.TodoInput) (service.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch service.TodoPatch) (service.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	ToggleTodo(ctx context.Context, id string) (service.Todo, error)
	ListCategories(ctx context.Context) ([]service.Category, error)
	ListPriorities(ctx context.Context) ([]service.Priority, error)
}

// Store mirrors the server's tasks. Every mutation is confirmed by the server
// before the local collection changes.
type Store struct {
	backend Backend

	mu               sync.RWMutex
	records          []service.Todo // raw server records, same order as tasks
	tasks            []Task
	categories       map[string]service.Category
	priorities       map[string]service.Priority
	categoriesLoaded bool
	prioritiesLoaded bool
	loaded           bool
	loadErr          error
	gen              uint64
	closed           bool
	nextID           int
	subs             map[int]func()
}

// NewStore creates an empty store backed by b.
func NewStore(b Backend) *Store {
	return &Store{
		backend:    b,
		categories: make(map[string]service.Category),
		priorities: make(map[string]service.Priority),
		subs:       make(map[int]func()),
	}
}

// Subscribe registers fn to be called after every committed change.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close marks the store abandoned. Responses arriving afterwards are not applied.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Tasks returns a copy of the collection in local order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Task returns the tracked task with id.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Loaded reports whether a task load has ever succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the last load failure, cleared by the next successful load.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// ReferenceReady reports whether both categories and priorities are loaded.
// Create and edit are gated on it.
func (s *Store) ReferenceReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoriesLoaded && s.prioritiesLoaded
}

// LoadTasks fetches the full collection and replaces the local one wholesale.
// On failure the previous collection is kept and the error is exposed via Err.
func (s *Store) LoadTasks(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	todos, err := s.backend.ListTodos(ctx)

	s.mu.Lock()
	if s.closed || gen != s.gen || ctx.Err() != nil {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.loadErr = err
		subs := s.subscribersLocked()
		s.mu.Unlock()
		notify(subs)
		return err
	}

	s.records = slices.Clone(todos)
	s.tasks = make([]Task, len(todos))
	for i, todo := range todos {
		s.tasks[i] = resolve(todo, s.categories, s.priorities)
	}
	s.loaded = true
	s.loadErr = nil
	subs := s.subscribersLocked()
	s.mu.Unlock()

	log := logging.From(ctx, "tasks")
	log.Debug().Int("count", len(todos)).Msg("tasks loaded")

	notify(subs)
	return nil
}

// LoadReferenceData fetches categories and priorities concurrently. Each
// collection is committed as soon as it arrives; the first error is returned.
// ReferenceReady is false until both collections of this load have arrived.
func (s *Store) LoadReferenceData(ctx context.Context) error {
	s.mu.Lock()
	s.categoriesLoaded = false
	s.prioritiesLoaded = false
	s.mu.Unlock()

	var g errgroup.Group

	g.Go(func() error {
		categories, err := s.backend.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		s.commitReference(func() {
			s.categories = make(map[string]service.Category, len(categories))
			for _, c := range categories {
				s.categories[c.ID] = c
			}
			s.categoriesLoaded = true
		})
		return nil
	})

	g.Go(func() error {
		priorities, err := s.backend.ListPriorities(ctx)
		if err != nil {
			return fmt.Errorf("load priorities: %w", err)
		}
		s.commitReference(func() {
			s.priorities = make(map[string]service.Priority, len(priorities))
			for _, p := range priorities {
				s.priorities[p.ID] = p
			}
			s.prioritiesLoaded = true
		})
		return nil
	})

	return g.Wait()
}

// commitReference applies a reference-data update and re-resolves every task.
func (s *Store) commitReference(apply func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	apply()
	for i, todo := range s.records {
		s.tasks[i] = resolve(todo, s.categories, s.priorities)
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs)
}

// Categories returns the loaded categories sorted by name.
func (s *Store) Categories() []service.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b service.Category) int {
		return strings.Compare(strings.ToLower(a.Name)+a.ID, strings.ToLower(b.Name)+b.ID)
	})
	return out
}

// Priorities returns the loaded priorities sorted by name.
func (s *Store) Priorities() []service.Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Priority, 0, len(s.priorities))
	for _, p := range s.priorities {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b service.Priority) int {
		return strings.Compare(strings.ToLower(a.Name)+a.ID, strings.ToLower(b.Name)+b.ID)
	})
	return out
}

// FindCategory resolves an id or a case-insensitive name.
func (s *Store) FindCategory(ref string) (service.Category, error) {
	categories := s.Categories()
	ids := make([]string, len(categories))
	names := make([]string, len(categories))
	for i, c := range categories {
		ids[i], names[i] = c.ID, c.Name
	}
	i, err := findRef("category", ref, ids, names)
	if err != nil {
		return service.Category{}, err
	}
	return categories[i], nil
}

// FindPriority resolves an id or a case-insensitive name.
func (s *Store) FindPriority(ref string) (service.Priority, error) {
	priorities := s.Priorities()
	ids := make([]string, len(priorities))
	names := make([]string, len(priorities))
	for i, p := range priorities {
		ids[i], names[i] = p.ID, p.Name
	}
	i, err := findRef("priority", ref, ids, names)
	if err != nil {
		return service.Priority{}, err
	}
	return priorities[i], nil
}

func findRef(kind, ref string, ids, names []string) (int, error) {
	ref = strings.TrimSpace(ref)
	if i := slices.Index(ids, ref); i >= 0 {
		return i, nil
	}

	refLower := strings.ToLower(ref)
	match := -1
	for i, name := range names {
		if strings.ToLower(strings.TrimSpace(name)) != refLower {
			continue
		}
		if match >= 0 {
			return -1, fmt.Errorf("%w %s name: %s", ErrAmbiguous, kind, ref)
		}
		match = i
	}
	if match < 0 {
		return -1, fmt.Errorf("%s %w: %s", kind, ErrNotFound, ref)
	}
	return match, nil
}

// CreateTask validates in, creates it on the server and prepends the
// returned record. Nothing changes locally on failure.
func (s *Store) CreateTask(ctx context.Context, in service.TodoInput) (Task, error) {
	if !s.ReferenceReady() {
		return Task{}, ErrReferenceNotReady
	}
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if err := s.validateInput(in); err != nil {
		return Task{}, err
	}

	todo, err := s.backend.CreateTodo(ctx, in)
	if err != nil {
		return Task{}, err
	}
	return s.commitRecord(todo, true), nil
}

// UpdateTask sends a partial update and replaces the local record by id with
// the server's answer.
func (s *Store) UpdateTask(ctx context.Context, id string, patch service.TodoPatch) (Task, error) {
	if !s.ReferenceReady() {
		return Task{}, ErrReferenceNotReady
	}
	if patch.IsEmpty() {
		return Task{}, errors.New("nothing to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.DueDate != nil {
		due := strings.TrimSpace(*patch.DueDate)
		patch.DueDate = &due
	}
	if err := s.validatePatch(patch); err != nil {
		return Task{}, err
	}

	todo, err := s.backend.UpdateTodo(ctx, id, patch)
	if err != nil {
		return Task{}, err
	}
	return s.commitRecord(todo, false), nil
}

// ToggleComplete flips completion on the server. The local record takes the
// server's post-toggle state; nothing is guessed locally.
func (s *Store) ToggleComplete(ctx context.Context, id string) (Task, error) {
	todo, err := s.backend.ToggleTodo(ctx, id)
	if err != nil {
		return Task{}, err
	}
	return s.commitRecord(todo, false), nil
}

// RefreshTask re-fetches one task and replaces (or starts tracking) it.
func (s *Store) RefreshTask(ctx context.Context, id string) (Task, error) {
	todo, err := s.backend.GetTodo(ctx, id)
	if err != nil {
		return Task{}, err
	}
	return s.commitRecord(todo, false), nil
}

// DeleteTask removes the local record once the server confirms.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := s.backend.DeleteTodo(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if i := s.indexLocked(id); i >= 0 {
		s.records = slices.Delete(s.records, i, i+1)
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs)
	return nil
}

// commitRecord places a server record in the collection. With prepend it goes
// first, otherwise it replaces the record with the same id in place (or is
// appended when untracked). The id appears exactly once afterwards.
func (s *Store) commitRecord(todo service.Todo, prepend bool) Task {
	s.mu.Lock()
	task := resolve(todo, s.categories, s.priorities)
	if s.closed {
		s.mu.Unlock()
		return task
	}

	i := s.indexLocked(todo.ID)
	switch {
	case prepend:
		if i >= 0 {
			s.records = slices.Delete(s.records, i, i+1)
			s.tasks = slices.Delete(s.tasks, i, i+1)
		}
		s.records = slices.Insert(s.records, 0, todo)
		s.tasks = slices.Insert(s.tasks, 0, task)
	case i >= 0:
		s.records[i] = todo
		s.tasks[i] = task
	default:
		s.records = append(s.records, todo)
		s.tasks = append(s.tasks, task)
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return task
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) subscribersLocked() []func() {
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
