package models

import (
	"time"
)

// Todo is a single to-do item owned by exactly one user.
type Todo struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"-"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"` // nil until the first change
}

// TodoPatch carries a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// IsEmpty reports whether the patch names no field at all.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply copies the patch onto t and reports whether any value changed.
func (p TodoPatch) Apply(t *Todo) bool {
	changed := false
	if p.Text != nil && *p.Text != t.Text {
		t.Text = *p.Text
		changed = true
	}
	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		changed = true
	}
	return changed
}
