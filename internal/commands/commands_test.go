package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/testutil"
)

type fixture struct {
	svc *testutil.FakeService
	cfg *config.Config
	env *commands.Env
}

// newFixture returns a logged-out environment backed by a FakeService with
// one verified user and some reference data.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	svc := testutil.NewFakeService()
	svc.AddUser("u1", "a@b.com", "Ann Example", "secret")
	svc.AddCategory("c1", "Work")
	svc.AddCategory("c2", "Home")
	svc.AddPriority("p1", "High")
	svc.AddPriority("p2", "Low")

	cfg := &config.Config{Dir: t.TempDir(), Settings: config.DefaultSettings()}
	svc.TokenSource = cfg

	sess := session.New(svc, cfg)

	return &fixture{
		svc: svc,
		cfg: cfg,
		env: &commands.Env{Config: cfg, Service: svc, Session: sess, In: strings.NewReader("")},
	}
}

// newLoggedIn is newFixture with a session and three tasks. In the default
// view (due date ascending) they are numbered t2, t1, t3.
func newLoggedIn(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	require.NoError(t, f.env.Session.Login(context.Background(), "a@b.com", "secret"))

	f.svc.AddTodo(service.Todo{ID: "t1", Title: "Buy milk", DueDate: "2024-02-01", CategoryID: "c1", PriorityID: "p1"})
	f.svc.AddTodo(service.Todo{ID: "t2", Title: "File taxes", DueDate: "2024-01-15", CategoryID: "c2", PriorityID: "p2", Status: "completed"})
	f.svc.AddTodo(service.Todo{ID: "t3", Title: "Call mom", DueDate: "2024-03-01", CategoryID: "c1", PriorityID: "p2"})
	return f
}

// run parses args with the command's flags the way the dispatcher does and
// runs it.
func (f *fixture) run(t *testing.T, cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), f.env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func serverTodo(t *testing.T, svc *testutil.FakeService, id string) service.Todo {
	t.Helper()
	for _, todo := range svc.ServerTodos() {
		if todo.ID == id {
			return todo
		}
	}
	t.Fatalf("todo %s not on server", id)
	return service.Todo{}
}

func TestVersionCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.run(t, &commands.VersionCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "todo 0.1.0\n", stdout)
}

func TestHelpCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.run(t, &commands.HelpCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	testutil.GoldenString(t, "help", stdout)
}

func TestHelpCommand_MentionsEveryCommand(t *testing.T) {
	f := newFixture(t)
	stdout, _, _ := f.run(t, &commands.HelpCmd{})

	for _, cmd := range commands.DefaultRegistry.All() {
		assert.Contains(t, stdout, "todo "+cmd.Name(), "help should mention %s", cmd.Name())
	}
}

func TestListCommand_DefaultView(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.ListCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	testutil.GoldenString(t, "list_default", stdout)
}

func TestListCommand_FilterKeepsDefaultNumbers(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.ListCmd{}, "--status", "active", "--sort", "title", "--desc")

	assert.Equal(t, exitcode.Success, code)
	expected := "   3  [ ] Call mom (due 2024-03-01, Work, Low)\n" +
		"   2  [ ] Buy milk (due 2024-02-01, Work, High)\n"
	assert.Equal(t, expected, stdout)
}

func TestListCommand_SearchAndCategory(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.ListCmd{}, "--category", "work", "--search", "MILK")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "   2  [ ] Buy milk (due 2024-02-01, Work, High)\n", stdout)
}

func TestListCommand_CategoryAllClearsFilter(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.ListCmd{}, "--category", "all")

	assert.Equal(t, exitcode.Success, code)
	testutil.GoldenString(t, "list_default", stdout)
}

func TestListCommand_CategoryNamedAll(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.AddCategory("c4", "All")
	f.svc.AddTodo(service.Todo{ID: "t4", Title: "Sort photos", DueDate: "2024-04-01", CategoryID: "c4", PriorityID: "p2", Status: "active"})

	stdout, _, code := f.run(t, &commands.ListCmd{}, "--category", "all")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "   4  [ ] Sort photos (due 2024-04-01, All, Low)\n", stdout)
}

func TestListCommand_NoMatches(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.ListCmd{}, "--search", "zzz")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "no tasks found\n", stdout)
}

func TestListCommand_InvalidStatus(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.ListCmd{}, "--status", "pending")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unknown status \"pending\" (want all, active or completed)\n", stderr)
	assert.Equal(t, 0, f.svc.Calls("ListTodos"))
}

func TestListCommand_ReferenceDataUnavailable(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.ListCategoriesErr = testutil.ErrOffline

	stdout, _, code := f.run(t, &commands.ListCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "Buy milk (due 2024-02-01, #c1, High)")
}

func TestListCommand_NetworkError(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.ListTodosErr = testutil.ErrOffline

	stdout, stderr, code := f.run(t, &commands.ListCmd{})

	assert.Equal(t, exitcode.BackendError, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "error: "+service.NetworkMessage+"\n", stderr)
}

func TestShowCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.ShowCmd{}, "2")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "id:          t1\n")
	assert.Contains(t, stdout, "title:       Buy milk\n")
	assert.Contains(t, stdout, "category:    Work\n")
	assert.Contains(t, stdout, "priority:    High\n")
}

func TestShowCommand_UnknownID(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.ShowCmd{}, "nope")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: "+testutil.ErrNotFound+"\n", stderr)
}

func TestAddCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.AddCmd{},
		"--due", "2024-05-01", "--category", "work", "--priority", "High", "--description", "wholemeal",
		"Buy", "bread")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "ok "))

	id := strings.TrimSpace(strings.TrimPrefix(stdout, "ok "))
	todo := serverTodo(t, f.svc, id)
	assert.Equal(t, "Buy bread", todo.Title)
	assert.Equal(t, "wholemeal", todo.Description)
	assert.Equal(t, "2024-05-01", todo.DueDate)
	assert.Equal(t, "c1", todo.CategoryID)
	assert.Equal(t, "p1", todo.PriorityID)
}

func TestAddCommand_Quiet(t *testing.T) {
	f := newLoggedIn(t)
	f.cfg.Quiet = true

	stdout, _, code := f.run(t, &commands.AddCmd{}, "--due", "2024-05-01", "-c", "c2", "-p", "p2", "Rake leaves")

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stdout)
}

func TestAddCommand_ValidationErrors(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.AddCmd{}, "Buy")

	assert.Equal(t, exitcode.UserError, code)
	expected := "error: dueDate: is required\n" +
		"error: categoryId: is required\n" +
		"error: priorityId: is required\n"
	assert.Equal(t, expected, stderr)
	assert.Equal(t, 0, f.svc.Calls("CreateTodo"))
}

func TestAddCommand_UnknownCategory(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.AddCmd{}, "--due", "2024-05-01", "--category", "Errands", "--priority", "High", "x")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: category not found: Errands\n", stderr)
}

func TestAddCommand_ServerRejection(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.CreateTodoErr = &service.APIError{Status: 400, Code: "400", Desc: "Due date cannot be in the past"}

	_, stderr, code := f.run(t, &commands.AddCmd{}, "--due", "2024-05-01", "--category", "Work", "--priority", "High", "x")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: Due date cannot be in the past\n", stderr)
}

func TestAddCommand_ReferenceDataUnavailable(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.ListPrioritiesErr = testutil.ErrOffline

	_, stderr, code := f.run(t, &commands.AddCmd{}, "--due", "2024-05-01", "--category", "Work", "--priority", "High", "x")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: "+service.NetworkMessage+"\n", stderr)
	assert.Equal(t, 0, f.svc.Calls("CreateTodo"))
}

func TestEditCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.EditCmd{}, "--title", "Buy oat milk", "--category", "home", "2")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok\n", stdout)

	todo := serverTodo(t, f.svc, "t1")
	assert.Equal(t, "Buy oat milk", todo.Title)
	assert.Equal(t, "c2", todo.CategoryID)
	assert.Equal(t, "2024-02-01", todo.DueDate)
}

func TestEditCommand_ClearDescription(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.AddTodo(service.Todo{ID: "t4", Title: "Paint", Description: "blue", DueDate: "2024-06-01", CategoryID: "c2", PriorityID: "p2"})

	_, stderr, code := f.run(t, &commands.EditCmd{}, "--description", "", "t4")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Empty(t, serverTodo(t, f.svc, "t4").Description)
}

func TestEditCommand_NothingToUpdate(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.EditCmd{}, "t1")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "error: nothing to update")
	assert.Equal(t, 0, f.svc.Calls("UpdateTodo"))
}

func TestEditCommand_InvalidDate(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.EditCmd{}, "--due", "tomorrow", "t1")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: dueDate: must be a date like 2024-01-31\n", stderr)
}

func TestToggleCommand_ByNumber(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.ToggleCmd{}, "2")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok completed\n", stdout)
	assert.Equal(t, service.StatusCompleted, serverTodo(t, f.svc, "t1").Status)
}

func TestToggleCommand_ByIDSkipsListing(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.ToggleCmd{}, "t2")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok active\n", stdout)
	assert.Equal(t, 0, f.svc.Calls("ListTodos"))
}

func TestToggleCommand_OutOfRange(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.ToggleCmd{}, "9")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: task number out of range: 9\n", stderr)
	assert.Equal(t, 0, f.svc.Calls("ToggleTodo"))
}

func TestRmCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.RmCmd{}, "1")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok\n", stdout)
	assert.Len(t, f.svc.ServerTodos(), 2)
	for _, todo := range f.svc.ServerTodos() {
		assert.NotEqual(t, "t2", todo.ID)
	}
}

func TestRmCommand_MissingRef(t *testing.T) {
	f := newLoggedIn(t)

	_, stderr, code := f.run(t, &commands.RmCmd{})

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: task reference required\n", stderr)
}

func TestRmCommand_ServerFailure(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.DeleteTodoErr = &service.APIError{Status: 500}

	_, stderr, code := f.run(t, &commands.RmCmd{}, "t1")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: "+service.GenericMessage+"\n", stderr)
	assert.Len(t, f.svc.ServerTodos(), 3)
}

func TestCategoriesCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.CategoriesCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "c2  Home\nc1  Work\n", stdout)
}

func TestPrioritiesCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, _, code := f.run(t, &commands.PrioritiesCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "p1  High\np2  Low\n", stdout)
}

func TestAuthRequired_ExpiredTokenMidCommand(t *testing.T) {
	f := newLoggedIn(t)
	f.svc.ListTodosErr = &service.APIError{Status: 401, Desc: "Token expired"}

	_, stderr, code := f.run(t, &commands.ListCmd{})

	assert.Equal(t, exitcode.AuthError, code)
	assert.Equal(t, "error: Token expired\n", stderr)
}
