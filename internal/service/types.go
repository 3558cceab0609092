// Package service defines the backend-agnostic interface for account and task operations.
package service

import (
	"encoding/json"
	"time"
)

// StatusCompleted is the server status value of a finished task.
const StatusCompleted = "completed"

// timestampLayouts are the formats the server has been seen to send.
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

// Timestamp is a server-side audit time. It is display-only, so a missing or
// malformed value decodes as the zero time instead of failing the record.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// User is the authenticated account profile.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// SignupRequest is the registration payload.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResult is returned by a successful registration.
// The account stays unverified until the token is confirmed.
type SignupResult struct {
	Email             string `json:"email"`
	FullName          string `json:"fullName"`
	VerificationToken string `json:"verificationToken"`
}

// LoginResult carries the bearer token and the profile it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Category is a reference-data record used to group tasks.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UserID       string    `json:"userId,omitempty"`
	ActiveStatus bool      `json:"active_status"`
	DelStatus    bool      `json:"del_status"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// Priority is a reference-data record ranking tasks.
type Priority struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	ActiveStatus bool      `json:"active_status"`
	DelStatus    bool      `json:"del_status"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// Todo is a task record as the server returns it.
// Category and Priority are only set when the server embeds them.
type Todo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DueDate      string    `json:"dueDate"`
	CategoryID   string    `json:"categoryId"`
	PriorityID   string    `json:"priorityId"`
	UserID       string    `json:"userId,omitempty"`
	Status       string    `json:"status"`
	ActiveStatus bool      `json:"active_status"`
	DelStatus    bool      `json:"del_status"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
	Category     *Category `json:"category,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
}

// TodoInput is the payload for creating a task.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	CategoryID  string `json:"categoryId"`
	PriorityID  string `json:"priorityId"`
}

// TodoPatch is a partial update; nil fields are left untouched by the server.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
	PriorityID  *string `json:"priorityId,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.CategoryID == nil && p.PriorityID == nil
}
