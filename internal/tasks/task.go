// Package tasks is the local mirror of the server's task collection and its
// reference data (categories and priorities).
package tasks

import (
	"strings"
	"time"

	"todo/internal/service"
)

// DateLayout is the calendar-date format of due dates.
const DateLayout = "2006-01-02"

// Task is a todo with its category and priority resolved to full records.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD
	Status      string
	Category    service.Category
	Priority    service.Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Completed derives the completion flag from the server status.
func (t Task) Completed() bool {
	return strings.EqualFold(t.Status, service.StatusCompleted)
}

// CategoryResolved reports whether the category label is known.
func (t Task) CategoryResolved() bool {
	return t.Category.Name != ""
}

// PriorityResolved reports whether the priority label is known.
func (t Task) PriorityResolved() bool {
	return t.Priority.Name != ""
}

// normalizeDate trims timestamps such as "2024-01-01T00:00:00.000Z" to the date part.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return s[:len(DateLayout)]
		}
	}
	return s
}

// resolve builds a Task from a server record. Embedded records win over
// reference data; unknown ids keep only the id (degraded display).
func resolve(todo service.Todo, categories map[string]service.Category, priorities map[string]service.Priority) Task {
	t := Task{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		DueDate:     normalizeDate(todo.DueDate),
		Status:      todo.Status,
		CreatedAt:   todo.CreatedAt.Time,
		UpdatedAt:   todo.UpdatedAt.Time,
	}

	categoryID := todo.CategoryID
	if todo.Category != nil && categoryID == "" {
		categoryID = todo.Category.ID
	}
	switch {
	case todo.Category != nil && todo.Category.Name != "":
		t.Category = *todo.Category
	case categories[categoryID].ID != "":
		t.Category = categories[categoryID]
	default:
		t.Category = service.Category{ID: categoryID}
	}

	priorityID := todo.PriorityID
	if todo.Priority != nil && priorityID == "" {
		priorityID = todo.Priority.ID
	}
	switch {
	case todo.Priority != nil && todo.Priority.Name != "":
		t.Priority = *todo.Priority
	case priorities[priorityID].ID != "":
		t.Priority = priorities[priorityID]
	default:
		t.Priority = service.Priority{ID: priorityID}
	}

	return t
}
