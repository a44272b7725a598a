package domain

import (
	"fmt"
	"strings"
	"time"
)

// Task is a unit of work assigned to one or more employees.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatorID   int64     `json:"creator_id"`
	AssigneeIDs []int64   `json:"assignee_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Route is a field trip plan assigned to one or more employees.
type Route struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatorID   int64     `json:"creator_id"`
	AssigneeIDs []int64   `json:"assignee_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// validateAssignment holds the rules shared by tasks and routes.
func validateAssignment(title string, creatorID int64, assignees []int64) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if creatorID <= 0 {
		return fmt.Errorf("%w: creator id", ErrInvalidID)
	}
	for _, id := range assignees {
		if id <= 0 {
			return fmt.Errorf("%w: assignee id %d", ErrInvalidID, id)
		}
	}
	return nil
}

// Validate checks the task fields.
func (t *Task) Validate() error {
	return validateAssignment(t.Title, t.CreatorID, t.AssigneeIDs)
}

// Validate checks the route fields.
func (r *Route) Validate() error {
	return validateAssignment(r.Title, r.CreatorID, r.AssigneeIDs)
}
