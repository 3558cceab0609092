package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"todo/internal/logging"
	"todo/internal/tasks"
	"todo/internal/view"
)

// TaskRef is a parsed task reference: a 1-based position in the default view,
// or a task id.
type TaskRef struct {
	Num int    // 0 when the reference is an id
	ID  string // empty when the reference is a number
}

// IsNumber reports whether the reference is a list position.
func (r TaskRef) IsNumber() bool { return r.ID == "" }

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task reference from args.
//
// Parsing rules:
// 1. No args, or a blank first arg → ErrTaskRefRequired
// 2. All digits → position in the default view (must be >= 1)
// 3. Anything else → task id
// 4. Extra args → error: unexpected argument
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, usagef("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 {
			return TaskRef{}, usagef("task number out of range: %s", ref)
		}
		return TaskRef{Num: num}, nil
	}
	return TaskRef{ID: ref}, nil
}

// isAllDigits returns true if s consists only of digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// defaultQuery is the view that numbers tasks: all statuses by due date.
func defaultQuery(env *Env) view.Query {
	q := view.DefaultQuery()
	q.Locale = env.Config.Settings.Language()
	return q
}

// positions maps task ids to their 1-based number in the default view.
func positions(env *Env, store *tasks.Store) map[string]int {
	ordered := view.Apply(store.Tasks(), defaultQuery(env))
	pos := make(map[string]int, len(ordered))
	for i, t := range ordered {
		pos[t.ID] = i + 1
	}
	return pos
}

// resolveTaskID turns ref into a task id. Numbers index the default view of
// the loaded collection; ids pass through untouched.
func resolveTaskID(env *Env, store *tasks.Store, ref TaskRef) (string, error) {
	if !ref.IsNumber() {
		return ref.ID, nil
	}
	ordered := view.Apply(store.Tasks(), defaultQuery(env))
	if ref.Num > len(ordered) {
		return "", usagef("task number out of range: %d", ref.Num)
	}
	return ordered[ref.Num-1].ID, nil
}

// loadOptions selects what openStore fetches.
type loadOptions struct {
	tasks     bool
	reference bool

	// optionalReference tolerates a reference-data failure; tasks then show
	// raw ids instead of labels.
	optionalReference bool
}

// openStore creates a task store and fetches what opts asks for, concurrently.
func openStore(ctx context.Context, env *Env, opts loadOptions) (*tasks.Store, error) {
	store := tasks.NewStore(env.Service)

	var g errgroup.Group
	if opts.tasks {
		g.Go(func() error { return store.LoadTasks(ctx) })
	}
	if opts.reference {
		g.Go(func() error {
			err := store.LoadReferenceData(ctx)
			if err != nil && opts.optionalReference {
				log := logging.From(ctx, "commands")
				log.Warn().Err(err).Msg("reference data unavailable, showing raw ids")
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return store, nil
}

// openStoreForRef loads tasks only when ref needs positions.
func openStoreForRef(ctx context.Context, env *Env, ref TaskRef, reference bool) (*tasks.Store, error) {
	return openStore(ctx, env, loadOptions{tasks: ref.IsNumber(), reference: reference})
}
