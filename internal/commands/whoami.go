package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/session"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the logged-in user. The dispatcher has already
// reconciled the profile with the server.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "todo whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st := env.Session.State()
	if st.User == nil {
		return report(ctx, errOut, session.ErrSessionExpired)
	}
	output.FormatUser(out, *st.User, st.Expiry)
	return exitcode.Success
}
