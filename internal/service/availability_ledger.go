package service

import (
	"fmt"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// teacherUsage tracks one teacher's runtime counters for the week being
// generated. lastSlot holds the index of the most recently assigned slot per
// day, -1 when the day is still empty.
type teacherUsage struct {
	dayCount   [numDays]int
	lastSlot   [numDays]int
	weekly     int
	maxPerDay  int
	maxPerWeek int
}

// roomOccupancy mirrors one classroom's (day, slot) grid. Rooms keep the
// order the inventory was supplied in; findFreeRoom scans that order, so the
// first listed room always wins.
type roomOccupancy struct {
	classroom models.Classroom
	busy      [numDays][numSlots]bool
}

// availabilityLedger owns all mutable state of a single generation run:
// teacher counters and classroom occupancy. It is passed by reference through
// the run and never shared across runs. The ledger's eligibility checks are
// what make double-booking structurally impossible; Record fails loudly if a
// caller ever bypasses them.
type availabilityLedger struct {
	usage map[string]*teacherUsage
	rooms []roomOccupancy
}

func newAvailabilityLedger(teachers []models.Teacher, resolver *preferenceResolver, classrooms []models.Classroom) *availabilityLedger {
	ledger := &availabilityLedger{
		usage: make(map[string]*teacherUsage, len(teachers)),
		rooms: make([]roomOccupancy, 0, len(classrooms)),
	}
	for _, teacher := range teachers {
		maxPerDay, maxPerWeek := resolver.Caps(teacher.ID)
		usage := &teacherUsage{maxPerDay: maxPerDay, maxPerWeek: maxPerWeek}
		for day := range usage.lastSlot {
			usage.lastSlot[day] = -1
		}
		ledger.usage[teacher.ID] = usage
	}
	for _, room := range classrooms {
		ledger.rooms = append(ledger.rooms, roomOccupancy{classroom: room})
	}
	return ledger
}

// TeacherEligible reports whether the teacher is under both the daily and
// weekly caps for the given day.
func (l *availabilityLedger) TeacherEligible(teacherID string, day int) bool {
	usage, ok := l.usage[teacherID]
	if !ok {
		return false
	}
	return usage.dayCount[day] < usage.maxPerDay && usage.weekly < usage.maxPerWeek
}

// MidSession reports whether the teacher already has at least one assignment
// on the given day.
func (l *availabilityLedger) MidSession(teacherID string, day int) bool {
	usage, ok := l.usage[teacherID]
	return ok && usage.dayCount[day] > 0
}

// LastSlot returns the index of the teacher's most recent assignment on the
// day, or -1 when the day is still empty.
func (l *availabilityLedger) LastSlot(teacherID string, day int) int {
	usage, ok := l.usage[teacherID]
	if !ok {
		return -1
	}
	return usage.lastSlot[day]
}

// DayCount returns how many slots the teacher holds on the given day.
func (l *availabilityLedger) DayCount(teacherID string, day int) int {
	usage, ok := l.usage[teacherID]
	if !ok {
		return 0
	}
	return usage.dayCount[day]
}

// WeeklyCount returns the teacher's running weekly total.
func (l *availabilityLedger) WeeklyCount(teacherID string) int {
	usage, ok := l.usage[teacherID]
	if !ok {
		return 0
	}
	return usage.weekly
}

// WeeklyCap returns the teacher's weekly limit.
func (l *availabilityLedger) WeeklyCap(teacherID string) int {
	usage, ok := l.usage[teacherID]
	if !ok {
		return 0
	}
	return usage.maxPerWeek
}

// AnyRoomFree reports whether at least one classroom is free for the cell.
func (l *availabilityLedger) AnyRoomFree(day, slot int) bool {
	for i := range l.rooms {
		if !l.rooms[i].busy[day][slot] {
			return true
		}
	}
	return false
}

// FreeRoom returns the first classroom, in inventory order, free for the cell.
func (l *availabilityLedger) FreeRoom(day, slot int) (models.Classroom, bool) {
	for i := range l.rooms {
		if !l.rooms[i].busy[day][slot] {
			return l.rooms[i].classroom, true
		}
	}
	return models.Classroom{}, false
}

// Record commits an assignment: bumps the teacher's daily and weekly
// counters, advances lastSlot, and marks the classroom occupied. All updates
// land together; the run loop is single-threaded so no partial state is ever
// observable. A teacher over cap or an already-occupied room means the caller
// skipped the eligibility checks, which is a ledger-invariant violation and
// returns an error rather than overwriting.
func (l *availabilityLedger) Record(teacherID, classroomID string, day, slot int) error {
	usage, ok := l.usage[teacherID]
	if !ok {
		return fmt.Errorf("unknown teacher %s", teacherID)
	}
	if usage.dayCount[day] >= usage.maxPerDay || usage.weekly >= usage.maxPerWeek {
		return fmt.Errorf("teacher %s over cap on day %d", teacherID, day)
	}

	var room *roomOccupancy
	for i := range l.rooms {
		if l.rooms[i].classroom.ID == classroomID {
			room = &l.rooms[i]
			break
		}
	}
	if room == nil {
		return fmt.Errorf("unknown classroom %s", classroomID)
	}
	if room.busy[day][slot] {
		return fmt.Errorf("classroom %s already occupied on day %d slot %d", classroomID, day, slot)
	}

	usage.dayCount[day]++
	usage.lastSlot[day] = slot
	usage.weekly++
	room.busy[day][slot] = true
	return nil
}
