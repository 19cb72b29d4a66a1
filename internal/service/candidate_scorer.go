package service

import (
	"sort"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// Scoring weights. Preference dominates, remaining weekly capacity and
// continuity follow, breadth of qualification and daily balance trail.
const (
	preferenceWeight  = 100
	remainingWeight   = 30
	consecutiveWeight = 50
	subjectWeight     = 20
	underfillWeight   = 10
)

type scoredCandidate struct {
	teacher models.Teacher
	score   float64
}

// consecutivenessBonus rewards keeping a teacher's day contiguous. No prior
// assignment yields 0; an immediately adjacent slot yields the full bonus of
// 2; the bonus decays as the gap widens.
func consecutivenessBonus(lastSlot, currentSlot int) float64 {
	if lastSlot < 0 {
		return 0
	}
	gap := currentSlot - lastSlot - 1
	if gap < 0 {
		return 0
	}
	if gap == 0 {
		return 2
	}
	return 2 / float64(gap+1)
}

// scoreCandidate computes the ranking score for a teacher already known to be
// eligible and not UNAVAILABLE for the cell.
func scoreCandidate(level models.PreferenceLevel, ledger *availabilityLedger, teacherID string, qualifiedSubjects, day, slot int) float64 {
	remaining := ledger.WeeklyCap(teacherID) - ledger.WeeklyCount(teacherID)
	targetPerDay := float64(ledger.WeeklyCap(teacherID)) / float64(numDays)
	underfill := (targetPerDay - float64(ledger.DayCount(teacherID, day))) * underfillWeight

	return float64(level)*preferenceWeight +
		float64(remaining)*remainingWeight +
		consecutivenessBonus(ledger.LastSlot(teacherID, day), slot)*consecutiveWeight +
		float64(qualifiedSubjects)*subjectWeight +
		underfill
}

// rankCandidates scores every supplied candidate and orders them descending.
// The sort is stable, so equal scores keep roster order and repeated runs on
// identical input produce identical rankings.
func rankCandidates(candidates []scoredCandidate) []scoredCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates
}
