// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"todo/internal/service"
	"todo/internal/tasks"
)

// TimeLayout is used for timestamps in detail views.
const TimeLayout = "2006-01-02 15:04"

// FormatTask formats a task line for the list view.
// Format: "{N:>4}  [x] {TITLE} (due {DATE}, {CATEGORY}, {PRIORITY})\n"
func FormatTask(w io.Writer, num int, task tasks.Task) {
	fmt.Fprintf(w, "%4d  %s %s (due %s, %s, %s)\n",
		num,
		checkbox(task.Completed()),
		normalizeTitle(task.Title),
		orDash(task.DueDate),
		label(task.Category.Name, task.Category.ID),
		label(task.Priority.Name, task.Priority.ID),
	)
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task tasks.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintf(w, "description: %s\n", indentContinuation(desc))
	}
	fmt.Fprintf(w, "due:         %s\n", orDash(task.DueDate))
	fmt.Fprintf(w, "status:      %s\n", orDash(task.Status))
	fmt.Fprintf(w, "category:    %s\n", label(task.Category.Name, task.Category.ID))
	fmt.Fprintf(w, "priority:    %s\n", label(task.Priority.Name, task.Priority.ID))
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.Local().Format(TimeLayout))
	}
	if !task.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated:     %s\n", task.UpdatedAt.Local().Format(TimeLayout))
	}
}

// FormatCategory formats a category for the categories command.
func FormatCategory(w io.Writer, c service.Category) {
	fmt.Fprintf(w, "%s  %s\n", c.ID, normalizeTitle(c.Name))
}

// FormatPriority formats a priority for the priorities command.
func FormatPriority(w io.Writer, p service.Priority) {
	fmt.Fprintf(w, "%s  %s\n", p.ID, normalizeTitle(p.Name))
}

// FormatUser prints the signed-in user and the token expiry when known.
func FormatUser(w io.Writer, u service.User, expiry time.Time) {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		name = u.Email
	}
	fmt.Fprintf(w, "%s <%s>\n", name, u.Email)
	fmt.Fprintf(w, "id: %s\n", u.ID)
	if !expiry.IsZero() {
		fmt.Fprintf(w, "token expires: %s\n", expiry.Local().Format(TimeLayout))
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// label prefers the resolved name and falls back to the raw id.
func label(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if id != "" {
		return "#" + id
	}
	return "-"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func indentContinuation(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\n             ")
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
