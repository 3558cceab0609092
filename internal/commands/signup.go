package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/logging"
)

func init() {
	Register(&SignupCmd{})
	Register(&VerifyCmd{})
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	name     string
	email    string
	password string
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string {
	return "todo signup --name <full-name> --email <email> [--password <password>]"
}
func (c *SignupCmd) NeedsAuth() bool { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
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

	res, err := env.Session.Signup(ctx, c.name, c.email, password)
	if err != nil {
		return report(ctx, errOut, err)
	}

	log := logging.From(ctx, "signup")
	log.Debug().Str("email", res.Email).Bool("token_returned", res.VerificationToken != "").Msg("account created")

	if !env.Config.Quiet {
		fmt.Fprintf(out, "account created for %s\n", res.Email)
		fmt.Fprintln(out, "check your email for the verification link, then run: todo verify <link>")
	}
	return exitcode.Success
}

// VerifyCmd implements the verify command.
type VerifyCmd struct{}

func (c *VerifyCmd) Name() string      { return "verify" }
func (c *VerifyCmd) Aliases() []string { return nil }
func (c *VerifyCmd) Synopsis() string  { return "Verify an email address" }
func (c *VerifyCmd) Usage() string     { return "todo verify <token-or-link>" }
func (c *VerifyCmd) NeedsAuth() bool   { return false }

func (c *VerifyCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VerifyCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if err := env.Session.VerifyEmail(ctx, strings.Join(args, "")); err != nil {
		return report(ctx, errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "email verified, you can now log in")
	}
	return exitcode.Success
}
