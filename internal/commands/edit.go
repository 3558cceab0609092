package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only flags that were given are sent.
type EditCmd struct {
	title       string
	description string
	due         string
	category    string
	priority    string

	set map[string]bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "todo edit <ref> [--title <text>] [--description <text>] [--due <YYYY-MM-DD>] [--category <name>] [--priority <name>]"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.set = make(map[string]bool)
	c.stringFlag(fs, "title", &c.title)
	c.stringFlag(fs, "description", &c.description)
	c.stringFlag(fs, "due", &c.due)
	c.stringFlag(fs, "category", &c.category)
	c.stringFlag(fs, "priority", &c.priority)
}

// stringFlag registers a string flag that records whether it was given, so an
// explicit empty description can be told apart from an absent one.
func (c *EditCmd) stringFlag(fs *flag.FlagSet, name string, dst *string) {
	fs.Func(name, "", func(v string) error {
		*dst = v
		c.set[name] = true
		return nil
	})
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(ctx, errOut, err)
	}
	if len(c.set) == 0 {
		return report(ctx, errOut, usagef("nothing to update (use --title, --description, --due, --category or --priority)"))
	}

	store, err := openStoreForRef(ctx, env, ref, true)
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	id, err := resolveTaskID(env, store, ref)
	if err != nil {
		return report(ctx, errOut, err)
	}

	var patch service.TodoPatch
	if c.set["title"] {
		patch.Title = &c.title
	}
	if c.set["description"] {
		patch.Description = &c.description
	}
	if c.set["due"] {
		patch.DueDate = &c.due
	}
	if c.set["category"] {
		catID, err := categoryID(store, c.category)
		if err != nil {
			return report(ctx, errOut, err)
		}
		patch.CategoryID = &catID
	}
	if c.set["priority"] {
		priID, err := priorityID(store, c.priority)
		if err != nil {
			return report(ctx, errOut, err)
		}
		patch.PriorityID = &priID
	}

	if _, err := store.UpdateTask(ctx, id, patch); err != nil {
		return report(ctx, errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
