package models

import "time"

// StudentGroup represents a cohort that receives a generated timetable.
type StudentGroup struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Grade        string    `db:"grade" json:"grade"`
	Section      string    `db:"section" json:"section"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Strength     int       `db:"strength" json:"strength"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
