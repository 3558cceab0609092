package service

import "context"

// Service defines the interface for the remote to-do backend.
// Commands and stores never talk HTTP directly; everything goes through here.
type Service interface {
	// Signup registers a new account. The session is not authenticated by it.
	Signup(ctx context.Context, req SignupRequest) (SignupResult, error)

	// VerifyEmail confirms an account with the token from the verification link.
	VerifyEmail(ctx context.Context, token string) error

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (LoginResult, error)

	// Me returns the profile of the bearer token's owner.
	Me(ctx context.Context) (User, error)

	// ListTodos returns every task of the current user.
	ListTodos(ctx context.Context) ([]Todo, error)

	// GetTodo returns a single task.
	GetTodo(ctx context.Context, id string) (Todo, error)

	// CreateTodo creates a task and returns the server's record.
	CreateTodo(ctx context.Context, in TodoInput) (Todo, error)

	// UpdateTodo applies a partial update and returns the server's record.
	UpdateTodo(ctx context.Context, id string, patch TodoPatch) (Todo, error)

	// DeleteTodo deletes a task.
	DeleteTodo(ctx context.Context, id string) error

	// ToggleTodo flips a task's completion server-side and returns the new record.
	ToggleTodo(ctx context.Context, id string) (Todo, error)

	// ListCategories returns the category reference data.
	ListCategories(ctx context.Context) ([]Category, error)

	// ListPriorities returns the priority reference data.
	ListPriorities(ctx context.Context) ([]Priority, error)
}
