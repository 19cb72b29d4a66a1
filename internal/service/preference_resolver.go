package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// preferenceMatrix holds one teacher's resolved preference levels for the
// full week grid. Cells never explicitly set stay at AVAILABLE.
type preferenceMatrix [numDays][numSlots]models.PreferenceLevel

const (
	numDays  = 5
	numSlots = 8
)

type teacherCaps struct {
	maxPerDay  int
	maxPerWeek int
}

// preferenceResolver answers preference and cap lookups for the duration of
// one generation run. All stored preference rows are parsed once up front;
// the hot loop never touches the repository layer.
type preferenceResolver struct {
	matrices map[string]preferenceMatrix
	caps     map[string]teacherCaps
}

func newPreferenceResolver(prefs []models.TeacherPreference) (*preferenceResolver, error) {
	r := &preferenceResolver{
		matrices: make(map[string]preferenceMatrix, len(prefs)),
		caps:     make(map[string]teacherCaps, len(prefs)),
	}
	for _, pref := range prefs {
		matrix, err := parseAvailabilityMatrix(pref.AvailableTimeSlots)
		if err != nil {
			return nil, fmt.Errorf("parse availability for teacher %s: %w", pref.TeacherID, err)
		}
		r.matrices[pref.TeacherID] = matrix

		caps := teacherCaps{maxPerDay: pref.MaxSlotsPerDay, maxPerWeek: pref.MaxSlotsPerWeek}
		if caps.maxPerDay <= 0 {
			caps.maxPerDay = models.DefaultMaxSlotsPerDay
		}
		if caps.maxPerWeek <= 0 {
			caps.maxPerWeek = models.DefaultMaxSlotsPerWeek
		}
		if caps.maxPerWeek < caps.maxPerDay {
			return nil, fmt.Errorf("teacher %s: weekly cap %d below daily cap %d", pref.TeacherID, caps.maxPerWeek, caps.maxPerDay)
		}
		r.caps[pref.TeacherID] = caps
	}
	return r, nil
}

// Level returns the teacher's preference for a (day, slot) cell. Teachers
// with no stored record are available everywhere.
func (r *preferenceResolver) Level(teacherID string, day, slot int) models.PreferenceLevel {
	matrix, ok := r.matrices[teacherID]
	if !ok {
		return models.PreferenceAvailable
	}
	return matrix[day][slot]
}

// Caps returns the teacher's daily and weekly limits, falling back to the
// defaults when no preference record exists.
func (r *preferenceResolver) Caps(teacherID string) (maxPerDay, maxPerWeek int) {
	if caps, ok := r.caps[teacherID]; ok {
		return caps.maxPerDay, caps.maxPerWeek
	}
	return models.DefaultMaxSlotsPerDay, models.DefaultMaxSlotsPerWeek
}

// dayIndexFold resolves a day name case-insensitively; stored matrices use
// lowercase keys.
func dayIndexFold(name string) int {
	for i, day := range models.WeekDays {
		if strings.EqualFold(day, name) {
			return i
		}
	}
	return -1
}

func parseAvailabilityMatrix(raw []byte) (preferenceMatrix, error) {
	var matrix preferenceMatrix
	if len(raw) == 0 {
		return matrix, nil
	}

	var decoded map[string]map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return matrix, err
	}

	for dayName, slots := range decoded {
		day := dayIndexFold(dayName)
		if day < 0 {
			continue
		}
		for label, value := range slots {
			slot := models.SlotIndex(label)
			if slot < 0 {
				continue
			}
			switch models.PreferenceLevel(value) {
			case models.PreferenceUnavailable, models.PreferenceAvailable, models.PreferencePreferred:
				matrix[day][slot] = models.PreferenceLevel(value)
			default:
				return matrix, fmt.Errorf("invalid preference value %d for %s %s", value, dayName, label)
			}
		}
	}
	return matrix, nil
}
