package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                   List tasks (due date, ascending)
  todo list [common flags] [--search <text>] [--status all|active|completed]
            [--category <name>] [--sort dueDate|priority|title|status] [--desc]
  todo show [common flags] <ref>
  todo add [common flags] --due <YYYY-MM-DD> --category <name> --priority <name>
           [--description <text>] <title...>
  todo edit [common flags] <ref> [--title <text>] [--description <text>]
            [--due <YYYY-MM-DD>] [--category <name>] [--priority <name>]
  todo toggle [common flags] <ref>
  todo done [common flags] <ref>
  todo rm [common flags] <ref>
  todo categories [common flags]
  todo priorities [common flags]
  todo signup [common flags] --name <full-name> --email <email> [--password <password>]
  todo verify [common flags] <token-or-link>
  todo login [common flags] --email <email> [--password <password>]
  todo logout [common flags]
  todo whoami [common flags]
  todo help
  todo version

A <ref> is the task number shown by "todo" or a task id.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
