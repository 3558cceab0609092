package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list [filters]`.
type ListCmd struct {
	search   string
	status   string
	category string
	sortKey  string
	desc     bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todo list [--search <text>] [--status all|active|completed] [--category <name>] [--sort dueDate|priority|title|status] [--desc]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.sortKey, "sort", "", "")
	fs.BoolVar(&c.desc, "desc", false, "")
}

// query builds the view query from the flags.
func (c *ListCmd) query(env *Env) (view.Query, error) {
	q := defaultQuery(env)
	q.Text = c.search
	q.Category = c.category

	var err error
	if q.Status, err = view.ParseStatus(c.status); err != nil {
		return view.Query{}, usagef("%v", err)
	}
	if q.SortKey, err = view.ParseSortKey(c.sortKey); err != nil {
		return view.Query{}, usagef("%v", err)
	}
	if c.desc {
		q.Direction = view.Desc
	}
	return q, nil
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return report(ctx, errOut, usagef("unexpected argument: %s", args[0]))
	}
	q, err := c.query(env)
	if err != nil {
		return report(ctx, errOut, err)
	}

	store, err := openStore(ctx, env, loadOptions{tasks: true, reference: true, optionalReference: true})
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	// A category given by name is matched against the resolved record, so
	// resolve user spelling (any case) to its id first. "all" clears the
	// filter unless a category is really called that.
	if q.Category != "" {
		cat, err := store.FindCategory(q.Category)
		switch {
		case err == nil:
			q.Category = cat.ID
		case strings.EqualFold(q.Category, string(view.StatusAll)):
			q.Category = ""
		}
	}

	// Numbers are positions in the default view so they stay valid as refs
	// for show, edit, rm and toggle whatever filters are applied here.
	pos := positions(env, store)
	visible := view.Apply(store.Tasks(), q)
	for _, t := range visible {
		output.FormatTask(out, pos[t.ID], t)
	}

	if len(visible) == 0 && !env.Config.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
