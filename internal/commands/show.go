package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command. The task is re-fetched from the server
// so the details are current.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show task details" }
func (c *ShowCmd) Usage() string     { return "todo show <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(ctx, errOut, err)
	}

	store, err := openStore(ctx, env, loadOptions{tasks: ref.IsNumber(), reference: true, optionalReference: true})
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	id, err := resolveTaskID(env, store, ref)
	if err != nil {
		return report(ctx, errOut, err)
	}

	task, err := store.RefreshTask(ctx, id)
	if err != nil {
		return report(ctx, errOut, err)
	}

	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
