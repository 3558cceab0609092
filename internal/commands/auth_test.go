package commands_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/commands"
	"todo/internal/exitcode"
	"todo/internal/testutil"
)

func TestLoginCommand_PasswordFromStdin(t *testing.T) {
	f := newFixture(t)
	f.env.In = strings.NewReader("secret\n")

	stdout, stderr, code := f.run(t, &commands.LoginCmd{}, "--email", "a@b.com")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "logged in as a@b.com\n", stdout)
	assert.True(t, f.cfg.HasToken())
	assert.True(t, f.env.Session.IsAuthenticated())
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.LoginCmd{}, "--email", "a@b.com", "--password", "nope")

	assert.Equal(t, exitcode.AuthError, code)
	assert.Equal(t, "error: Invalid email or password\n", stderr)
	assert.False(t, f.cfg.HasToken())
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.LoginCmd{}, "--email", "a@b.com")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: password required\n", stderr)
	assert.Equal(t, 0, f.svc.Calls("Login"))
}

func TestLoginCommand_MissingEmail(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.LoginCmd{}, "--password", "secret")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: --email required\n", stderr)
}

func TestLoginCommand_NetworkError(t *testing.T) {
	f := newFixture(t)
	f.svc.LoginErr = testutil.ErrOffline

	_, stderr, code := f.run(t, &commands.LoginCmd{}, "--email", "a@b.com", "--password", "secret")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "unable to reach the server")
}

func TestLoginCommand_Quiet(t *testing.T) {
	f := newFixture(t)
	f.cfg.Quiet = true

	stdout, _, code := f.run(t, &commands.LoginCmd{}, "--email", "a@b.com", "--password", "secret")

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stdout)
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.run(t, &commands.LogoutCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "not logged in\n", stdout)
}

func TestLogoutCommand_ClearsCredentials(t *testing.T) {
	f := newLoggedIn(t)
	require.True(t, f.cfg.HasToken())

	stdout, _, code := f.run(t, &commands.LogoutCmd{})

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)
	assert.False(t, f.cfg.HasToken())
	assert.False(t, f.env.Session.IsAuthenticated())
}

func TestSignupThenVerify(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.run(t, &commands.SignupCmd{}, "--name", "Bob Builder", "--email", "bob@b.com", "--password", "pw")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "account created for bob@b.com")
	assert.False(t, f.env.Session.IsAuthenticated())

	link := "https://app.example/verify-email?token=" + f.svc.VerificationToken("bob@b.com")
	stdout, stderr, code = f.run(t, &commands.VerifyCmd{}, link)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "email verified, you can now log in\n", stdout)

	_, stderr, code = f.run(t, &commands.LoginCmd{}, "--email", "bob@b.com", "--password", "pw")
	assert.Equal(t, exitcode.Success, code, stderr)
}

func TestSignupCommand_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.SignupCmd{}, "--name", "Ann", "--email", "a@b.com", "--password", "pw")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: Email already registered\n", stderr)
}

func TestSignupCommand_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.SignupCmd{}, "--email", "bob", "--password", "pw")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "error: fullName:")
	assert.Contains(t, stderr, "error: email:")
	assert.Equal(t, 0, f.svc.Calls("Signup"))
}

func TestVerifyCommand_MissingToken(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.VerifyCmd{}, "https://app.example/verify-email")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: invalid or missing verification token\n", stderr)
	assert.Equal(t, 0, f.svc.Calls("VerifyEmail"))
}

func TestVerifyCommand_Rejected(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.run(t, &commands.VerifyCmd{}, "bogus")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: Invalid or expired verification token\n", stderr)
}

func TestWhoamiCommand(t *testing.T) {
	f := newLoggedIn(t)

	stdout, stderr, code := f.run(t, &commands.WhoamiCmd{})

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "Ann Example <a@b.com>\nid: u1\n", stdout)
}
