package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"todo/internal/service"
	"todo/internal/tasks"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task tasks.Task
		want string
	}{
		{
			name: "resolved",
			num:  1,
			task: tasks.Task{
				Title: "Buy milk", DueDate: "2024-01-01", Status: "active",
				Category: service.Category{ID: "c1", Name: "Errands"},
				Priority: service.Priority{ID: "p1", Name: "High"},
			},
			want: "   1  [ ] Buy milk (due 2024-01-01, Errands, High)\n",
		},
		{
			name: "completed with unresolved references",
			num:  12,
			task: tasks.Task{
				Title: "File taxes", DueDate: "2024-04-15", Status: "completed",
				Category: service.Category{ID: "c9"},
				Priority: service.Priority{ID: "p9"},
			},
			want: "  12  [x] File taxes (due 2024-04-15, #c9, #p9)\n",
		},
		{
			name: "untitled without due date",
			num:  3,
			task: tasks.Task{Title: " \n "},
			want: "   3  [ ] (untitled) (due -, -, -)\n",
		},
		{
			name: "multiline title",
			num:  4,
			task: tasks.Task{Title: "line one\nline two", DueDate: "2024-01-01"},
			want: "   4  [ ] line one line two (due 2024-01-01, -, -)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.num, tt.task)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskDetail(&buf, tasks.Task{
		ID:          "t1",
		Title:       "Buy milk",
		Description: "two litres\nsemi-skimmed",
		DueDate:     "2024-01-01",
		Status:      "active",
		Category:    service.Category{ID: "c1", Name: "Errands"},
		Priority:    service.Priority{ID: "p1"},
	})

	want := "id:          t1\n" +
		"title:       Buy milk\n" +
		"description: two litres\n" +
		"             semi-skimmed\n" +
		"due:         2024-01-01\n" +
		"status:      active\n" +
		"category:    Errands\n" +
		"priority:    #p1\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatReferenceData(t *testing.T) {
	var buf bytes.Buffer
	FormatCategory(&buf, service.Category{ID: "c1", Name: "Work"})
	FormatPriority(&buf, service.Priority{ID: "p1", Name: ""})

	assert.Equal(t, "c1  Work\np1  (untitled)\n", buf.String())
}

func TestFormatUser(t *testing.T) {
	var buf bytes.Buffer
	FormatUser(&buf, service.User{ID: "u1", Email: "a@b.com"}, time.Time{})

	assert.Equal(t, "a@b.com <a@b.com>\nid: u1\n", buf.String())

	buf.Reset()
	expiry := time.Date(2030, 1, 2, 3, 4, 0, 0, time.Local)
	FormatUser(&buf, service.User{ID: "u1", Email: "a@b.com", FullName: "Ann"}, expiry)

	assert.Equal(t, "Ann <a@b.com>\nid: u1\ntoken expires: 2030-01-02 03:04\n", buf.String())
}
