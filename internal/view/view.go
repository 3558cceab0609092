// Package view derives the displayed task list from the collection: text,
// status and category filters followed by a stable, locale-aware sort.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"todo/internal/tasks"
)

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// SortKey names the field tasks are ordered by.
type SortKey string

const (
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
	SortStatus   SortKey = "status"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query is the complete set of view criteria.
type Query struct {
	Text      string // matched as typed, surrounding spaces included
	Status    Status
	Category  string // id or name; empty means all
	SortKey   SortKey
	Direction Direction
	Locale    language.Tag
}

// DefaultQuery shows every task by ascending due date.
func DefaultQuery() Query {
	return Query{
		Status:    StatusAll,
		SortKey:   SortDueDate,
		Direction: Asc,
		Locale:    language.English,
	}
}

// ParseStatus accepts all, active or completed (case-insensitive). Empty means all.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "active", "open":
		return StatusActive, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q (want all, active or completed)", s)
}

// ParseSortKey accepts dueDate, priority, title or status. Empty means dueDate.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "duedate", "due":
		return SortDueDate, nil
	case "priority":
		return SortPriority, nil
	case "title":
		return SortTitle, nil
	case "status":
		return SortStatus, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want dueDate, priority, title or status)", s)
}

// ParseDirection accepts asc or desc. Empty means asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q (want asc or desc)", s)
}

// Apply returns the tasks matching q, ordered by q's sort key. The input is
// not modified. Ties keep their input order.
func Apply(in []tasks.Task, q Query) []tasks.Task {
	fold := cases.Fold()
	needle := fold.String(q.Text)
	category := q.Category

	out := make([]tasks.Task, 0, len(in))
	for _, t := range in {
		if !matchesText(t, needle, fold) || !matchesStatus(t, q.Status) || !matchesCategory(t, category) {
			continue
		}
		out = append(out, t)
	}

	cmp := comparator(q)
	slices.SortStableFunc(out, cmp)
	return out
}

func matchesText(t tasks.Task, needle string, fold cases.Caser) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(fold.String(t.Title), needle) ||
		strings.Contains(fold.String(t.Description), needle)
}

func matchesStatus(t tasks.Task, s Status) bool {
	switch s {
	case StatusActive:
		return !t.Completed()
	case StatusCompleted:
		return t.Completed()
	}
	return true
}

func matchesCategory(t tasks.Task, category string) bool {
	if category == "" {
		return true
	}
	return t.Category.ID == category || (t.Category.Name != "" && t.Category.Name == category)
}

func comparator(q Query) func(a, b tasks.Task) int {
	sign := 1
	if q.Direction == Desc {
		sign = -1
	}

	locale := q.Locale
	if locale == language.Und {
		locale = language.English
	}
	coll := collate.New(locale, collate.IgnoreCase)

	var key func(a, b tasks.Task) int
	switch q.SortKey {
	case SortDueDate:
		// YYYY-MM-DD compares correctly as a string.
		key = func(a, b tasks.Task) int { return strings.Compare(a.DueDate, b.DueDate) }
	case SortPriority:
		key = func(a, b tasks.Task) int { return coll.CompareString(a.Priority.Name, b.Priority.Name) }
	case SortTitle:
		key = func(a, b tasks.Task) int { return coll.CompareString(a.Title, b.Title) }
	case SortStatus:
		key = func(a, b tasks.Task) int { return compareBool(a.Completed(), b.Completed()) }
	default:
		return func(a, b tasks.Task) int { return 0 }
	}
	return func(a, b tasks.Task) int { return sign * key(a, b) }
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
