package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&CategoriesCmd{})
	Register(&PrioritiesCmd{})
}

// CategoriesCmd implements the categories command.
type CategoriesCmd struct{}

func (c *CategoriesCmd) Name() string      { return "categories" }
func (c *CategoriesCmd) Aliases() []string { return nil }
func (c *CategoriesCmd) Synopsis() string  { return "List categories" }
func (c *CategoriesCmd) Usage() string     { return "todo categories" }
func (c *CategoriesCmd) NeedsAuth() bool   { return true }

func (c *CategoriesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoriesCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	store, err := openStore(ctx, env, loadOptions{reference: true})
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	categories := store.Categories()
	for _, cat := range categories {
		output.FormatCategory(out, cat)
	}
	if len(categories) == 0 && !env.Config.Quiet {
		fmt.Fprintln(out, "no categories found")
	}
	return exitcode.Success
}

// PrioritiesCmd implements the priorities command.
type PrioritiesCmd struct{}

func (c *PrioritiesCmd) Name() string      { return "priorities" }
func (c *PrioritiesCmd) Aliases() []string { return nil }
func (c *PrioritiesCmd) Synopsis() string  { return "List priorities" }
func (c *PrioritiesCmd) Usage() string     { return "todo priorities" }
func (c *PrioritiesCmd) NeedsAuth() bool   { return true }

func (c *PrioritiesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PrioritiesCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	store, err := openStore(ctx, env, loadOptions{reference: true})
	if err != nil {
		return report(ctx, errOut, err)
	}
	defer store.Close()

	priorities := store.Priorities()
	for _, p := range priorities {
		output.FormatPriority(out, p)
	}
	if len(priorities) == 0 && !env.Config.Quiet {
		fmt.Fprintln(out, "no priorities found")
	}
	return exitcode.Success
}
