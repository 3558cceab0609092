package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session" }
func (c *LoginCmd) Usage() string     { return "todo login --email <email> [--password <password>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return report(ctx, errOut, usagef("unexpected argument: %s", args[0]))
	}
	if c.email == "" {
		return report(ctx, errOut, usagef("--email required"))
	}

	password, err := readPassword(env.In, errOut, c.password)
	if err != nil {
		return report(ctx, errOut, err)
	}

	if err := env.Session.Login(ctx, c.email, password); err != nil {
		return report(ctx, errOut, err)
	}

	if !env.Config.Quiet {
		user, _ := env.Session.User()
		fmt.Fprintf(out, "logged in as %s\n", user.Email)
	}
	return exitcode.Success
}
