package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PreferenceLevel encodes how a teacher feels about a (day, slot) cell.
type PreferenceLevel int

const (
	PreferenceUnavailable PreferenceLevel = -1
	PreferenceAvailable   PreferenceLevel = 0
	PreferencePreferred   PreferenceLevel = 1
)

// Default workload caps applied when a teacher has no stored preference.
const (
	DefaultMaxSlotsPerDay  = 6
	DefaultMaxSlotsPerWeek = 25
)

// TeacherPreference stores capacity limits and the availability matrix for a
// teacher. AvailableTimeSlots is a JSON object keyed by lowercase day name,
// then by slot label, holding -1/0/1; missing entries mean AVAILABLE.
type TeacherPreference struct {
	ID                 string         `db:"id" json:"id"`
	TeacherID          string         `db:"teacher_id" json:"teacher_id"`
	MaxSlotsPerDay     int            `db:"max_slots_per_day" json:"max_slots_per_day"`
	MaxSlotsPerWeek    int            `db:"max_slots_per_week" json:"max_slots_per_week"`
	AvailableTimeSlots types.JSONText `db:"available_time_slots" json:"available_time_slots"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}
