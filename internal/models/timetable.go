package models

import "time"

// TimetableStatus tracks the lifecycle of a generated week.
type TimetableStatus string

const (
	TimetableStatusActive   TimetableStatus = "ACTIVE"
	TimetableStatusArchived TimetableStatus = "ARCHIVED"
)

// Timetable is one generation run's output. Each run produces a new version;
// publishing a version archives the previous active one in the same
// transaction so readers never observe a half-built week.
type Timetable struct {
	ID             string          `db:"id" json:"id"`
	StudentGroupID string          `db:"student_group_id" json:"student_group_id"`
	Version        int             `db:"version" json:"version"`
	Status         TimetableStatus `db:"status" json:"status"`
	FilledCells    int             `db:"filled_cells" json:"filled_cells"`
	UnfilledCells  int             `db:"unfilled_cells" json:"unfilled_cells"`
	GeneratedAt    time.Time       `db:"generated_at" json:"generated_at"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// TimetableSlot is a committed assignment for one (day, slot) cell.
// Uniqueness per (day, slot, teacher), (day, slot, group) and
// (day, slot, classroom) is guaranteed by the generator's ledger and backed
// by unique indexes on the table.
type TimetableSlot struct {
	ID             string    `db:"id" json:"id"`
	TimetableID    string    `db:"timetable_id" json:"timetable_id"`
	DayOfWeek      int       `db:"day_of_week" json:"day_of_week"`
	SlotIndex      int       `db:"slot_index" json:"slot_index"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	ClassroomID    string    `db:"classroom_id" json:"classroom_id"`
	StudentGroupID string    `db:"student_group_id" json:"student_group_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// DayName returns the calendar day for the slot.
func (s TimetableSlot) DayName() string { return DayName(s.DayOfWeek) }

// TimeSlotLabel returns the clock label for the slot.
func (s TimetableSlot) TimeSlotLabel() string { return SlotLabel(s.SlotIndex) }

// TimetableSlotDetail joins a slot with display names for presentation.
type TimetableSlotDetail struct {
	TimetableSlot
	TeacherName      string `db:"teacher_name" json:"teacher_name"`
	SubjectName      string `db:"subject_name" json:"subject_name"`
	ClassroomName    string `db:"classroom_name" json:"classroom_name"`
	StudentGroupName string `db:"student_group_name" json:"student_group_name"`
}

// SlotFilter narrows timetable slot queries on the read path.
type SlotFilter struct {
	TeacherID      string
	StudentGroupID string
	DayOfWeek      *int
}
