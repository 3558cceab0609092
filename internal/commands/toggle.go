package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd flips a task between active and completed. The printed state is
// the one the server returned.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Toggle a task's completion" }
func (c *ToggleCmd) Usage() string     { return "todo toggle <ref>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(ctx, errOut, err)
	}

	store, err := openStoreForRef(ctx, env, ref, false)
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	id, err := resolveTaskID(env, store, ref)
	if err != nil {
		return report(ctx, errOut, err)
	}

	task, err := store.ToggleComplete(ctx, id)
	if err != nil {
		return report(ctx, errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.Status)
	}
	return exitcode.Success
}
