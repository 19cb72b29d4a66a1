package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineshrk/timegrid-api/internal/models"
	appErrors "github.com/dineshrk/timegrid-api/pkg/errors"
)

func TestGeneratorSingleTeacherFillsToWeeklyCap(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", FullName: "Asha Rao", SubjectIDs: []string{"math"}},
		},
	})
	service := fixture.build()

	resp, err := service.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 40, resp.Stats.TotalCells)
	assert.Equal(t, models.DefaultMaxSlotsPerWeek, resp.Stats.FilledCells)
	assert.Equal(t, 40-models.DefaultMaxSlotsPerWeek, resp.Stats.UnfilledCells)

	published := fixture.publisher.slots
	require.Len(t, published, models.DefaultMaxSlotsPerWeek)

	perDay := map[int]int{}
	seen := map[string]bool{}
	for _, slot := range published {
		perDay[slot.DayOfWeek]++
		key := fmt.Sprintf("%d/%d", slot.DayOfWeek, slot.SlotIndex)
		assert.False(t, seen[key], "cell assigned twice")
		seen[key] = true
		assert.Equal(t, "t1", slot.TeacherID)
		assert.Equal(t, "math", slot.SubjectID)
	}
	for day := 0; day < 5; day++ {
		assert.LessOrEqual(t, perDay[day], models.DefaultMaxSlotsPerDay)
	}
}

func TestGeneratorHonoursUnavailableCells(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", FullName: "Asha Rao", SubjectIDs: []string{"math"}},
			{ID: "t2", FullName: "Ben Osei", SubjectIDs: []string{"science"}},
		},
		preferences: []models.TeacherPreference{{
			TeacherID:          "t1",
			AvailableTimeSlots: types.JSONText(`{"monday": {"9:00 AM": -1, "10:00 AM": -1}}`),
		}},
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.NoError(t, err)

	for _, slot := range fixture.publisher.slots {
		if slot.TeacherID == "t1" && slot.DayOfWeek == 0 {
			assert.Greater(t, slot.SlotIndex, 1, "blocked Monday cells must not go to t1")
		}
	}
}

func TestGeneratorContinuityBeatsHigherScore(t *testing.T) {
	// t2 has the broader qualification list and a preferred Monday 10:00 cell,
	// so pure scoring would hand that cell to t2. t1 is already mid-session on
	// Monday and the continuity pass runs first.
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", FullName: "Asha Rao", SubjectIDs: []string{"math"}},
			{ID: "t2", FullName: "Ben Osei", SubjectIDs: []string{"science", "physics", "chemistry"}},
		},
		preferences: []models.TeacherPreference{
			{
				TeacherID:          "t1",
				AvailableTimeSlots: types.JSONText(`{"monday": {"9:00 AM": 1}}`),
			},
			{
				TeacherID:          "t2",
				AvailableTimeSlots: types.JSONText(`{"monday": {"10:00 AM": 1}}`),
			},
		},
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.NoError(t, err)

	byCell := map[string]models.TimetableSlot{}
	for _, slot := range fixture.publisher.slots {
		byCell[fmt.Sprintf("%d/%d", slot.DayOfWeek, slot.SlotIndex)] = slot
	}

	require.Contains(t, byCell, "0/0")
	assert.Equal(t, "t1", byCell["0/0"].TeacherID, "preferred cell wins the opener")
	require.Contains(t, byCell, "0/1")
	assert.Equal(t, "t1", byCell["0/1"].TeacherID, "mid-session teacher extends before scoring runs")
}

func TestGeneratorPreconditionFailures(t *testing.T) {
	base := generatorFixtureConfig{
		teachers: []models.Teacher{{ID: "t1", SubjectIDs: []string{"math"}}},
	}

	cases := []struct {
		name    string
		mutate  func(*generatorFixtureConfig)
		message string
	}{
		{"no teachers", func(c *generatorFixtureConfig) { c.teachers = nil }, "no active teachers"},
		{"no classrooms", func(c *generatorFixtureConfig) { c.noClassrooms = true }, "no active classrooms"},
		{"no student group", func(c *generatorFixtureConfig) { c.noGroups = true }, "no student group"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			service := newGeneratorFixture(cfg).build()

			_, err := service.Generate(context.Background())
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
			assert.Contains(t, appErr.Message, tc.message)
		})
	}
}

func TestGeneratorEmptyResultFails(t *testing.T) {
	blocked := `{
		"monday":    {"9:00 AM": -1, "10:00 AM": -1, "11:00 AM": -1, "12:00 PM": -1, "1:00 PM": -1, "2:00 PM": -1, "3:00 PM": -1, "4:00 PM": -1},
		"tuesday":   {"9:00 AM": -1, "10:00 AM": -1, "11:00 AM": -1, "12:00 PM": -1, "1:00 PM": -1, "2:00 PM": -1, "3:00 PM": -1, "4:00 PM": -1},
		"wednesday": {"9:00 AM": -1, "10:00 AM": -1, "11:00 AM": -1, "12:00 PM": -1, "1:00 PM": -1, "2:00 PM": -1, "3:00 PM": -1, "4:00 PM": -1},
		"thursday":  {"9:00 AM": -1, "10:00 AM": -1, "11:00 AM": -1, "12:00 PM": -1, "1:00 PM": -1, "2:00 PM": -1, "3:00 PM": -1, "4:00 PM": -1},
		"friday":    {"9:00 AM": -1, "10:00 AM": -1, "11:00 AM": -1, "12:00 PM": -1, "1:00 PM": -1, "2:00 PM": -1, "3:00 PM": -1, "4:00 PM": -1}
	}`

	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{{ID: "t1", SubjectIDs: []string{"math"}}},
		preferences: []models.TeacherPreference{{
			TeacherID:          "t1",
			AvailableTimeSlots: types.JSONText(blocked),
		}},
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmptyTimetable.Code, appErr.Code)
	assert.Zero(t, fixture.publisher.calls, "nothing may be published")
}

func TestGeneratorSkipsTeachersWithoutKnownSubjects(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", SubjectIDs: []string{"astrology"}},
			{ID: "t2", SubjectIDs: []string{"math"}},
		},
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.NoError(t, err)

	for _, slot := range fixture.publisher.slots {
		assert.Equal(t, "t2", slot.TeacherID, "unqualified teachers never receive cells")
	}
}

func TestGeneratorAssignsFirstQualifiedSubject(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", SubjectIDs: []string{"science", "math"}},
		},
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.NoError(t, err)

	for _, slot := range fixture.publisher.slots {
		assert.Equal(t, "science", slot.SubjectID)
	}
}

func TestGeneratorSchedulesFirstActiveGroupOnly(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{{ID: "t1", SubjectIDs: []string{"math"}}},
		groups: []models.StudentGroup{
			{ID: "g1", Name: "10-A"},
			{ID: "g2", Name: "10-B"},
		},
	})
	service := fixture.build()

	resp, err := service.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "g1", resp.StudentGroupID)
	for _, slot := range fixture.publisher.slots {
		assert.Equal(t, "g1", slot.StudentGroupID)
	}
}

func TestGeneratorPublishesVersionedTimetable(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{{ID: "t1", SubjectIDs: []string{"math"}}},
	})
	service := fixture.build()

	resp, err := service.Generate(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, fixture.publisher.calls)
	published := fixture.publisher.timetable
	require.NotNil(t, published)
	assert.Equal(t, models.TimetableStatusActive, published.Status)
	assert.Equal(t, resp.Version, published.Version)
	assert.Equal(t, resp.Stats.FilledCells, published.FilledCells)
	for _, slot := range fixture.publisher.slots {
		assert.Equal(t, published.ID, slot.TimetableID)
	}
	assert.Equal(t, 1, fixture.cache.calls, "snapshot invalidated after publish")
}

func TestGeneratorPublishFailureSurfaces(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers:   []models.Teacher{{ID: "t1", SubjectIDs: []string{"math"}}},
		publishErr: errors.New("connection reset"),
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Zero(t, fixture.cache.calls, "no invalidation on failed publish")
}

func TestGeneratorCacheFailureDoesNotFailRun(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{{ID: "t1", SubjectIDs: []string{"math"}}},
		cacheErr: errors.New("redis down"),
	})
	service := fixture.build()

	_, err := service.Generate(context.Background())
	require.NoError(t, err)
}

func TestGeneratorDeterministicAcrossRuns(t *testing.T) {
	cfg := generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", FullName: "Asha Rao", SubjectIDs: []string{"math"}},
			{ID: "t2", FullName: "Ben Osei", SubjectIDs: []string{"science"}},
			{ID: "t3", FullName: "Carmen Diaz", SubjectIDs: []string{"history", "geography"}},
		},
		preferences: []models.TeacherPreference{
			{
				TeacherID:          "t2",
				MaxSlotsPerDay:     3,
				MaxSlotsPerWeek:    12,
				AvailableTimeSlots: types.JSONText(`{"wednesday": {"9:00 AM": 1, "10:00 AM": 1}}`),
			},
		},
	}

	first := newGeneratorFixture(cfg)
	_, err := first.build().Generate(context.Background())
	require.NoError(t, err)

	second := newGeneratorFixture(cfg)
	_, err = second.build().Generate(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(first.publisher.slots), len(second.publisher.slots))
	for i := range first.publisher.slots {
		a, b := first.publisher.slots[i], second.publisher.slots[i]
		assert.Equal(t, a.DayOfWeek, b.DayOfWeek)
		assert.Equal(t, a.SlotIndex, b.SlotIndex)
		assert.Equal(t, a.TeacherID, b.TeacherID)
		assert.Equal(t, a.SubjectID, b.SubjectID)
		assert.Equal(t, a.ClassroomID, b.ClassroomID)
	}
}

func TestCommitCellLeavesCellUnfilledWhenRoomsExhausted(t *testing.T) {
	fixture := newGeneratorFixture(generatorFixtureConfig{
		teachers: []models.Teacher{
			{ID: "t1", SubjectIDs: []string{"math"}},
			{ID: "t2", SubjectIDs: []string{"science"}},
		},
	})
	service := fixture.build()

	inputs, err := service.loadInputs(context.Background())
	require.NoError(t, err)
	ledger := newAvailabilityLedger(inputs.teachers, inputs.resolver, inputs.classrooms)

	// Burn the only room for Monday 9:00, then ask for another commit there.
	require.NoError(t, ledger.Record("t1", "room-1", 0, 0))

	_, ok, err := service.commitCell(inputs, ledger, inputs.teachers[1], 0, 0)
	require.NoError(t, err)
	assert.False(t, ok, "teacher was chosen but the cell stays unfilled")
	assert.Equal(t, 0, ledger.WeeklyCount("t2"))
}

// --- Fixtures ---

type generatorFixtureConfig struct {
	teachers     []models.Teacher
	preferences  []models.TeacherPreference
	groups       []models.StudentGroup
	noClassrooms bool
	noGroups     bool
	publishErr   error
	cacheErr     error
}

type generatorFixture struct {
	cfg       generatorFixtureConfig
	publisher *publisherStub
	cache     *invalidatorStub
}

func newGeneratorFixture(cfg generatorFixtureConfig) *generatorFixture {
	return &generatorFixture{
		cfg:       cfg,
		publisher: &publisherStub{err: cfg.publishErr},
		cache:     &invalidatorStub{err: cfg.cacheErr},
	}
}

func (f *generatorFixture) build() *TimetableGeneratorService {
	classrooms := []models.Classroom{{ID: "room-1", Name: "Room 101"}}
	if f.cfg.noClassrooms {
		classrooms = nil
	}
	groups := f.cfg.groups
	if groups == nil {
		groups = []models.StudentGroup{{ID: "g1", Name: "10-A"}}
	}
	if f.cfg.noGroups {
		groups = nil
	}

	return NewTimetableGeneratorService(
		rosterStub{items: f.cfg.teachers},
		inventoryStub{items: classrooms},
		catalogStub{items: []models.Subject{
			{ID: "math", Name: "Mathematics"},
			{ID: "science", Name: "Science"},
			{ID: "physics", Name: "Physics"},
			{ID: "chemistry", Name: "Chemistry"},
			{ID: "history", Name: "History"},
			{ID: "geography", Name: "Geography"},
		}},
		groupsStub{items: groups},
		prefSourceStub{items: f.cfg.preferences},
		f.publisher,
		f.cache,
		nil,
		nil,
	)
}

type rosterStub struct {
	items []models.Teacher
}

func (s rosterStub) ListActive(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, len(s.items))
	for i, teacher := range s.items {
		out[i] = teacher
		out[i].SubjectIDs = append([]string(nil), teacher.SubjectIDs...)
	}
	return out, nil
}

type inventoryStub struct {
	items []models.Classroom
}

func (s inventoryStub) ListActive(ctx context.Context) ([]models.Classroom, error) {
	return s.items, nil
}

type catalogStub struct {
	items []models.Subject
}

func (s catalogStub) ListAll(ctx context.Context) ([]models.Subject, error) {
	return s.items, nil
}

type groupsStub struct {
	items []models.StudentGroup
}

func (s groupsStub) ListActive(ctx context.Context) ([]models.StudentGroup, error) {
	return s.items, nil
}

type prefSourceStub struct {
	items []models.TeacherPreference
}

func (s prefSourceStub) ListAll(ctx context.Context) ([]models.TeacherPreference, error) {
	return s.items, nil
}

type publisherStub struct {
	timetable *models.Timetable
	slots     []models.TimetableSlot
	calls     int
	err       error
}

func (s *publisherStub) Publish(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error {
	if s.err != nil {
		return s.err
	}
	s.calls++
	timetable.Version = s.calls
	s.timetable = timetable
	s.slots = slots
	return nil
}

type invalidatorStub struct {
	calls int
	err   error
}

func (s *invalidatorStub) InvalidateActive(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.calls++
	return nil
}
