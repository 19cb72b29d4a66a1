package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dineshrk/timegrid-api/internal/dto"
	"github.com/dineshrk/timegrid-api/internal/models"
	appErrors "github.com/dineshrk/timegrid-api/pkg/errors"
)

type teacherRoster interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type classroomInventory interface {
	ListActive(ctx context.Context) ([]models.Classroom, error)
}

type subjectCatalog interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type studentGroupRoster interface {
	ListActive(ctx context.Context) ([]models.StudentGroup, error)
}

type preferenceSource interface {
	ListAll(ctx context.Context) ([]models.TeacherPreference, error)
}

type timetablePublisher interface {
	Publish(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error
}

type snapshotInvalidator interface {
	InvalidateActive(ctx context.Context) error
}

type generationObserver interface {
	ObserveGeneration(outcome string, duration time.Duration, filled, unfilled int)
}

// TimetableGeneratorService drives the greedy single-pass generation run:
// load inputs, sweep the week grid, commit assignments through the ledger,
// publish the result as a new timetable version.
type TimetableGeneratorService struct {
	teachers   teacherRoster
	classrooms classroomInventory
	subjects   subjectCatalog
	groups     studentGroupRoster
	prefs      preferenceSource
	timetables timetablePublisher
	cache      snapshotInvalidator
	metrics    generationObserver
	logger     *zap.Logger
}

// NewTimetableGeneratorService wires generator dependencies. cache and
// metrics may be nil.
func NewTimetableGeneratorService(
	teachers teacherRoster,
	classrooms classroomInventory,
	subjects subjectCatalog,
	groups studentGroupRoster,
	prefs preferenceSource,
	timetables timetablePublisher,
	cache snapshotInvalidator,
	metrics generationObserver,
	logger *zap.Logger,
) *TimetableGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableGeneratorService{
		teachers:   teachers,
		classrooms: classrooms,
		subjects:   subjects,
		groups:     groups,
		prefs:      prefs,
		timetables: timetables,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// runInputs is everything a generation run needs, loaded once up front.
type runInputs struct {
	teachers   []models.Teacher
	classrooms []models.Classroom
	group      models.StudentGroup
	resolver   *preferenceResolver
	names      nameIndex
}

// nameIndex resolves display names for the response payload.
type nameIndex struct {
	teachers   map[string]string
	subjects   map[string]string
	classrooms map[string]string
}

// Generate executes one full run. Only the first active student group is
// scheduled; callers wanting several groups invoke one run per group.
func (s *TimetableGeneratorService) Generate(ctx context.Context) (*dto.GenerateTimetableResponse, error) {
	started := time.Now()

	inputs, err := s.loadInputs(ctx)
	if err != nil {
		s.observe("precondition_failed", started, 0, 0)
		return nil, err
	}

	ledger := newAvailabilityLedger(inputs.teachers, inputs.resolver, inputs.classrooms)
	slots, unfilled, err := s.sweepWeek(inputs, ledger)
	if err != nil {
		s.observe("ledger_violation", started, len(slots), unfilled)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "ledger invariant violation")
	}

	if len(slots) == 0 {
		s.observe("empty", started, 0, unfilled)
		return nil, appErrors.Clone(appErrors.ErrEmptyTimetable,
			"generation produced no assignments; check teacher preferences and subject qualifications")
	}

	timetable := &models.Timetable{
		ID:             uuid.NewString(),
		StudentGroupID: inputs.group.ID,
		Status:         models.TimetableStatusActive,
		FilledCells:    len(slots),
		UnfilledCells:  unfilled,
		GeneratedAt:    time.Now().UTC(),
	}
	for i := range slots {
		slots[i].TimetableID = timetable.ID
	}

	if err := s.timetables.Publish(ctx, timetable, slots); err != nil {
		s.observe("publish_failed", started, len(slots), unfilled)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}

	if s.cache != nil {
		if err := s.cache.InvalidateActive(ctx); err != nil {
			s.logger.Warn("snapshot invalidation failed", zap.Error(err))
		}
	}
	s.observe("published", started, len(slots), unfilled)
	s.logger.Info("timetable generated",
		zap.String("timetable_id", timetable.ID),
		zap.String("student_group_id", inputs.group.ID),
		zap.Int("version", timetable.Version),
		zap.Int("filled_cells", len(slots)),
		zap.Int("unfilled_cells", unfilled),
	)

	return &dto.GenerateTimetableResponse{
		TimetableID:    timetable.ID,
		StudentGroupID: inputs.group.ID,
		Version:        timetable.Version,
		Stats: dto.GenerationStats{
			TotalCells:    numDays * numSlots,
			FilledCells:   len(slots),
			UnfilledCells: unfilled,
		},
		Slots: s.slotViews(slots, inputs),
	}, nil
}

func (s *TimetableGeneratorService) loadInputs(ctx context.Context) (*runInputs, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher roster")
	}
	if len(teachers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active teachers available")
	}

	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom inventory")
	}
	if len(classrooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active classrooms available")
	}

	groups, err := s.groups.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student groups")
	}
	if len(groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no student group found")
	}

	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
	}

	prefs, err := s.prefs.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher preferences")
	}
	resolver, err := newPreferenceResolver(prefs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher preference data")
	}

	// Drop qualifications pointing at unknown subjects, keeping the
	// teacher's registration order intact.
	known := lo.SliceToMap(subjects, func(sub models.Subject) (string, struct{}) { return sub.ID, struct{}{} })
	for i := range teachers {
		teachers[i].SubjectIDs = lo.Filter(teachers[i].SubjectIDs, func(id string, _ int) bool {
			_, ok := known[id]
			return ok
		})
	}

	names := nameIndex{
		teachers:   make(map[string]string, len(teachers)),
		subjects:   make(map[string]string, len(subjects)),
		classrooms: make(map[string]string, len(classrooms)),
	}
	for _, t := range teachers {
		names.teachers[t.ID] = t.FullName
	}
	for _, sub := range subjects {
		names.subjects[sub.ID] = sub.Name
	}
	for _, room := range classrooms {
		names.classrooms[room.ID] = room.Name
	}

	return &runInputs{
		teachers:   teachers,
		classrooms: classrooms,
		group:      groups[0],
		resolver:   resolver,
		names:      names,
	}, nil
}

// sweepWeek visits every cell with the slot index as the outer loop and the
// day as the inner loop. That nesting spreads early assignments across the
// week before any day fills up, and changing it changes which cells win under
// contention, so it stays fixed.
func (s *TimetableGeneratorService) sweepWeek(inputs *runInputs, ledger *availabilityLedger) ([]models.TimetableSlot, int, error) {
	slots := make([]models.TimetableSlot, 0, numDays*numSlots)
	unfilled := 0

	for slot := 0; slot < numSlots; slot++ {
		for day := 0; day < numDays; day++ {
			record, ok, err := s.fillCell(inputs, ledger, day, slot)
			if err != nil {
				return slots, unfilled, err
			}
			if ok {
				slots = append(slots, record)
			} else {
				unfilled++
			}
		}
	}
	return slots, unfilled, nil
}

func (s *TimetableGeneratorService) fillCell(inputs *runInputs, ledger *availabilityLedger, day, slot int) (models.TimetableSlot, bool, error) {
	// Continuity first: extend a teacher already active today, scanning in
	// roster order and skipping the scorer entirely.
	for _, teacher := range inputs.teachers {
		if inputs.resolver.Level(teacher.ID, day, slot) == models.PreferenceUnavailable {
			continue
		}
		if !ledger.MidSession(teacher.ID, day) {
			continue
		}
		if !ledger.TeacherEligible(teacher.ID, day) {
			continue
		}
		if !ledger.AnyRoomFree(day, slot) {
			continue
		}
		if len(teacher.SubjectIDs) == 0 {
			continue
		}
		return s.commitCell(inputs, ledger, teacher, day, slot)
	}

	// Otherwise score the remaining eligible teachers and take the best.
	candidates := make([]scoredCandidate, 0, len(inputs.teachers))
	for _, teacher := range inputs.teachers {
		level := inputs.resolver.Level(teacher.ID, day, slot)
		if level == models.PreferenceUnavailable {
			continue
		}
		if !ledger.TeacherEligible(teacher.ID, day) {
			continue
		}
		if len(teacher.SubjectIDs) == 0 {
			continue
		}
		candidates = append(candidates, scoredCandidate{
			teacher: teacher,
			score:   scoreCandidate(level, ledger, teacher.ID, len(teacher.SubjectIDs), day, slot),
		})
	}
	if len(candidates) == 0 {
		return models.TimetableSlot{}, false, nil
	}
	best := rankCandidates(candidates)[0]

	return s.commitCell(inputs, ledger, best.teacher, day, slot)
}

// commitCell binds the chosen teacher to a room and records the assignment.
// The teacher is picked before the room on purpose: when every room is taken
// the cell stays unfilled even though a teacher was selected. Reordering to
// room-first would change which cells fill under room contention.
func (s *TimetableGeneratorService) commitCell(inputs *runInputs, ledger *availabilityLedger, teacher models.Teacher, day, slot int) (models.TimetableSlot, bool, error) {
	room, ok := ledger.FreeRoom(day, slot)
	if !ok {
		return models.TimetableSlot{}, false, nil
	}

	// First qualified subject only; the list order is stable for the run.
	subjectID := teacher.SubjectIDs[0]

	if err := ledger.Record(teacher.ID, room.ID, day, slot); err != nil {
		// Unreachable when the eligibility checks ran; a hit here is a
		// ledger bug, so the run fails rather than overwriting.
		s.logger.Error("ledger invariant violation",
			zap.String("teacher_id", teacher.ID),
			zap.Int("day", day),
			zap.Int("slot", slot),
			zap.Error(err),
		)
		return models.TimetableSlot{}, false, err
	}

	return models.TimetableSlot{
		ID:             uuid.NewString(),
		DayOfWeek:      day,
		SlotIndex:      slot,
		TeacherID:      teacher.ID,
		SubjectID:      subjectID,
		ClassroomID:    room.ID,
		StudentGroupID: inputs.group.ID,
	}, true, nil
}

func (s *TimetableGeneratorService) slotViews(slots []models.TimetableSlot, inputs *runInputs) []dto.SlotView {
	views := make([]dto.SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, dto.SlotView{
			Day:              slot.DayName(),
			TimeSlot:         slot.TimeSlotLabel(),
			TeacherID:        slot.TeacherID,
			TeacherName:      inputs.names.teachers[slot.TeacherID],
			SubjectID:        slot.SubjectID,
			SubjectName:      inputs.names.subjects[slot.SubjectID],
			ClassroomID:      slot.ClassroomID,
			ClassroomName:    inputs.names.classrooms[slot.ClassroomID],
			StudentGroupID:   slot.StudentGroupID,
			StudentGroupName: inputs.group.Name,
		})
	}
	return views
}

func (s *TimetableGeneratorService) observe(outcome string, started time.Time, filled, unfilled int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveGeneration(outcome, time.Since(started), filled, unfilled)
}
