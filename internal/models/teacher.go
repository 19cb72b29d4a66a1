package models

import "time"

// Teacher represents an instructor eligible for timetable assignment.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// SubjectIDs lists the subjects the teacher is qualified for, in the
	// order they were registered. The generator always assigns the first
	// qualified subject, so this ordering is load-bearing.
	SubjectIDs []string `db:"-" json:"subject_ids"`
}
