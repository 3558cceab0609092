package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	due         string
	category    string
	priority    string
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todo add --due <YYYY-MM-DD> --category <name> --priority <name> [--description <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	store, err := openStore(ctx, env, loadOptions{reference: true})
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	in := service.TodoInput{
		Title:       strings.Join(args, " "),
		Description: c.description,
		DueDate:     c.due,
	}
	if in.CategoryID, err = categoryID(store, c.category); err != nil {
		return report(ctx, errOut, err)
	}
	if in.PriorityID, err = priorityID(store, c.priority); err != nil {
		return report(ctx, errOut, err)
	}

	task, err := store.CreateTask(ctx, in)
	if err != nil {
		return report(ctx, errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}

// categoryID resolves a user-typed category name or id. Empty stays empty so
// validation reports it as a field error.
func categoryID(store *tasks.Store, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	cat, err := store.FindCategory(ref)
	if err != nil {
		return "", err
	}
	return cat.ID, nil
}

// priorityID resolves a user-typed priority name or id.
func priorityID(store *tasks.Store, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	pri, err := store.FindPriority(ref)
	if err != nil {
		return "", err
	}
	return pri.ID, nil
}
