// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todo/internal/service"
)

// ErrNotFound is the description returned for unknown ids.
const ErrNotFound = "Todo not found"

type fakeUser struct {
	user     service.User
	password string
	verified bool
	verify   string // pending verification token
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu         sync.RWMutex
	users      map[string]*fakeUser // email -> user
	tokens     map[string]string    // bearer token -> email
	todos      []service.Todo
	categories []service.Category
	priorities []service.Priority
	calls      map[string]int
	now        func() time.Time

	// TokenSource, when set, makes authenticated calls require a token issued
	// by Login or IssueToken. When nil, authenticated calls always succeed.
	TokenSource oauth2.TokenSource

	// EmbedReferences makes returned todos carry their category and priority records.
	EmbedReferences bool

	// Error injection for testing
	SignupErr         error
	VerifyEmailErr    error
	LoginErr          error
	MeErr             error
	ListTodosErr      error
	GetTodoErr        error
	CreateTodoErr     error
	UpdateTodoErr     error
	DeleteTodoErr     error
	ToggleTodoErr     error
	ListCategoriesErr error
	ListPrioritiesErr error
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]*fakeUser),
		tokens: make(map[string]string),
		calls:  make(map[string]int),
		now:    time.Now,
	}
}

// AddUser adds a verified account.
func (f *FakeService) AddUser(id, email, fullName, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = &fakeUser{
		user:     service.User{ID: id, Email: email, FullName: fullName},
		password: password,
		verified: true,
	}
}

// IssueToken returns a bearer token valid for email, as Login would.
func (f *FakeService) IssueToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "tok-" + uuid.NewString()
	f.tokens[token] = email
	return token
}

// AddCategory adds a category record.
func (f *FakeService) AddCategory(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, service.Category{ID: id, Name: name, ActiveStatus: true})
}

// AddPriority adds a priority record.
func (f *FakeService) AddPriority(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priorities = append(f.priorities, service.Priority{ID: id, Name: name, Code: name, ActiveStatus: true})
}

// AddTodo stores a todo as-is; empty ids and status are filled in.
func (f *FakeService) AddTodo(t service.Todo) service.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "active"
	}
	f.todos = append(f.todos, t)
	return t
}

// ServerTodos returns the server-side todos in storage order.
func (f *FakeService) ServerTodos() []service.Todo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Todo, len(f.todos))
	copy(out, f.todos)
	return out
}

// Calls returns how many times method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// VerificationToken returns the pending verification token for email.
func (f *FakeService) VerificationToken(email string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if u, ok := f.users[email]; ok {
		return u.verify
	}
	return ""
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// authorize mirrors the REST client: no token is ErrUnauthorized before any
// request, an unknown token is a 401 response.
func (f *FakeService) authorize() error {
	if f.TokenSource == nil {
		return nil
	}
	tok, err := f.TokenSource.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrUnauthorized, err)
	}
	f.mu.RLock()
	_, ok := f.tokens[tok.AccessToken]
	f.mu.RUnlock()
	if !ok {
		return &service.APIError{Status: http.StatusUnauthorized, Desc: "Unauthorized"}
	}
	return nil
}

// Signup implements service.Service.
func (f *FakeService) Signup(ctx context.Context, req service.SignupRequest) (service.SignupResult, error) {
	f.record("Signup")
	if f.SignupErr != nil {
		return service.SignupResult{}, f.SignupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.users[req.Email]; exists {
		return service.SignupResult{}, &service.APIError{Status: http.StatusConflict, Desc: "Email already registered"}
	}
	verify := "verify-" + uuid.NewString()
	f.users[req.Email] = &fakeUser{
		user:     service.User{ID: uuid.NewString(), Email: req.Email, FullName: req.FullName},
		password: req.Password,
		verify:   verify,
	}
	return service.SignupResult{Email: req.Email, FullName: req.FullName, VerificationToken: verify}, nil
}

// VerifyEmail implements service.Service.
func (f *FakeService) VerifyEmail(ctx context.Context, token string) error {
	f.record("VerifyEmail")
	if f.VerifyEmailErr != nil {
		return f.VerifyEmailErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.verify != "" && u.verify == token {
			u.verified = true
			u.verify = ""
			return nil
		}
	}
	return &service.APIError{Status: http.StatusBadRequest, Desc: "Invalid or expired verification token"}
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.LoginResult{}, f.LoginErr
	}
	f.mu.RLock()
	u, ok := f.users[email]
	f.mu.RUnlock()

	if !ok || u.password != password {
		return service.LoginResult{}, &service.APIError{Status: http.StatusUnauthorized, Desc: "Invalid email or password"}
	}
	if !u.verified {
		return service.LoginResult{}, &service.APIError{Status: http.StatusForbidden, Desc: "Please verify your email first"}
	}
	return service.LoginResult{Token: f.IssueToken(email), User: u.user}, nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.record("Me")
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	if err := f.authorize(); err != nil {
		return service.User{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.TokenSource != nil {
		tok, _ := f.TokenSource.Token()
		return f.users[f.tokens[tok.AccessToken]].user, nil
	}
	for _, u := range f.users {
		return u.user, nil
	}
	return service.User{}, &service.APIError{Status: http.StatusUnauthorized, Desc: "Unauthorized"}
}

// ListTodos implements service.Service.
func (f *FakeService) ListTodos(ctx context.Context) ([]service.Todo, error) {
	f.record("ListTodos")
	if f.ListTodosErr != nil {
		return nil, f.ListTodosErr
	}
	if err := f.authorize(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]service.Todo, 0, len(f.todos))
	for _, t := range f.todos {
		out = append(out, f.decorate(t))
	}
	return out, nil
}

// GetTodo implements service.Service.
func (f *FakeService) GetTodo(ctx context.Context, id string) (service.Todo, error) {
	f.record("GetTodo")
	if f.GetTodoErr != nil {
		return service.Todo{}, f.GetTodoErr
	}
	if err := f.authorize(); err != nil {
		return service.Todo{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Todo{}, notFound()
	}
	return f.decorate(f.todos[i]), nil
}

// CreateTodo implements service.Service.
func (f *FakeService) CreateTodo(ctx context.Context, in service.TodoInput) (service.Todo, error) {
	f.record("CreateTodo")
	if f.CreateTodoErr != nil {
		return service.Todo{}, f.CreateTodoErr
	}
	if err := f.authorize(); err != nil {
		return service.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now().UTC()
	t := service.Todo{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		DueDate:      in.DueDate,
		CategoryID:   in.CategoryID,
		PriorityID:   in.PriorityID,
		Status:       "active",
		ActiveStatus: true,
		CreatedAt:    service.Timestamp{Time: now},
		UpdatedAt:    service.Timestamp{Time: now},
	}
	f.todos = append(f.todos, t)
	return f.decorate(t), nil
}

// UpdateTodo implements service.Service.
func (f *FakeService) UpdateTodo(ctx context.Context, id string, patch service.TodoPatch) (service.Todo, error) {
	f.record("UpdateTodo")
	if f.UpdateTodoErr != nil {
		return service.Todo{}, f.UpdateTodoErr
	}
	if err := f.authorize(); err != nil {
		return service.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Todo{}, notFound()
	}
	t := &f.todos[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.CategoryID != nil {
		t.CategoryID = *patch.CategoryID
	}
	if patch.PriorityID != nil {
		t.PriorityID = *patch.PriorityID
	}
	t.UpdatedAt = service.Timestamp{Time: f.now().UTC()}
	return f.decorate(*t), nil
}

// DeleteTodo implements service.Service.
func (f *FakeService) DeleteTodo(ctx context.Context, id string) error {
	f.record("DeleteTodo")
	if f.DeleteTodoErr != nil {
		return f.DeleteTodoErr
	}
	if err := f.authorize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return notFound()
	}
	f.todos = append(f.todos[:i], f.todos[i+1:]...)
	return nil
}

// ToggleTodo implements service.Service.
func (f *FakeService) ToggleTodo(ctx context.Context, id string) (service.Todo, error) {
	f.record("ToggleTodo")
	if f.ToggleTodoErr != nil {
		return service.Todo{}, f.ToggleTodoErr
	}
	if err := f.authorize(); err != nil {
		return service.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Todo{}, notFound()
	}
	t := &f.todos[i]
	if t.Status == service.StatusCompleted {
		t.Status = "active"
	} else {
		t.Status = service.StatusCompleted
	}
	t.UpdatedAt = service.Timestamp{Time: f.now().UTC()}
	return f.decorate(*t), nil
}

// ListCategories implements service.Service.
func (f *FakeService) ListCategories(ctx context.Context) ([]service.Category, error) {
	f.record("ListCategories")
	if f.ListCategoriesErr != nil {
		return nil, f.ListCategoriesErr
	}
	if err := f.authorize(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Category, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

// ListPriorities implements service.Service.
func (f *FakeService) ListPriorities(ctx context.Context) ([]service.Priority, error) {
	f.record("ListPriorities")
	if f.ListPrioritiesErr != nil {
		return nil, f.ListPrioritiesErr
	}
	if err := f.authorize(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Priority, len(f.priorities))
	copy(out, f.priorities)
	return out, nil
}

func (f *FakeService) indexOf(id string) int {
	for i, t := range f.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// decorate embeds reference records when EmbedReferences is set. Callers hold mu.
func (f *FakeService) decorate(t service.Todo) service.Todo {
	t.Category, t.Priority = nil, nil
	if !f.EmbedReferences {
		return t
	}
	for _, c := range f.categories {
		if c.ID == t.CategoryID {
			c := c
			t.Category = &c
		}
	}
	for _, p := range f.priorities {
		if p.ID == t.PriorityID {
			p := p
			t.Priority = &p
		}
	}
	return t
}

func notFound() error {
	return &service.APIError{Status: http.StatusNotFound, Desc: ErrNotFound}
}

// ErrOffline is a ready-made transport failure for error injection.
var ErrOffline = fmt.Errorf("%w: %w", service.ErrNetwork, errors.New("connection refused"))
