package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineshrk/timegrid-api/internal/dto"
	"github.com/dineshrk/timegrid-api/internal/models"
	appErrors "github.com/dineshrk/timegrid-api/pkg/errors"
)

func TestPreferenceServiceGetReturnsDefaultsWhenAbsent(t *testing.T) {
	service := NewTeacherPreferenceService(&prefStoreStub{}, teacherLookupStub{known: true}, nil, nil)

	pref, err := service.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", pref.TeacherID)
	assert.Equal(t, models.DefaultMaxSlotsPerDay, pref.MaxSlotsPerDay)
	assert.Equal(t, models.DefaultMaxSlotsPerWeek, pref.MaxSlotsPerWeek)
}

func TestPreferenceServiceGetReturnsStored(t *testing.T) {
	stored := &models.TeacherPreference{TeacherID: "t1", MaxSlotsPerDay: 4, MaxSlotsPerWeek: 16}
	service := NewTeacherPreferenceService(&prefStoreStub{stored: stored}, teacherLookupStub{known: true}, nil, nil)

	pref, err := service.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 4, pref.MaxSlotsPerDay)
}

func TestPreferenceServiceUpsertStoresRecord(t *testing.T) {
	store := &prefStoreStub{}
	service := NewTeacherPreferenceService(store, teacherLookupStub{known: true}, nil, nil)

	pref, err := service.Upsert(context.Background(), "t1", dto.UpsertPreferenceRequest{
		MaxSlotsPerDay:  4,
		MaxSlotsPerWeek: 16,
		AvailableTimeSlots: map[string]map[string]int{
			"monday": {"9:00 AM": -1, "10:00 AM": 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", pref.TeacherID)
	require.NotNil(t, store.upserted)
	assert.JSONEq(t, `{"monday": {"9:00 AM": -1, "10:00 AM": 1}}`, string(store.upserted.AvailableTimeSlots))
}

func TestPreferenceServiceUpsertRejectsWeeklyBelowDaily(t *testing.T) {
	service := NewTeacherPreferenceService(&prefStoreStub{}, teacherLookupStub{known: true}, nil, nil)

	_, err := service.Upsert(context.Background(), "t1", dto.UpsertPreferenceRequest{
		MaxSlotsPerDay:  6,
		MaxSlotsPerWeek: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPreferenceServiceUpsertRejectsOutOfRangeCaps(t *testing.T) {
	service := NewTeacherPreferenceService(&prefStoreStub{}, teacherLookupStub{known: true}, nil, nil)

	_, err := service.Upsert(context.Background(), "t1", dto.UpsertPreferenceRequest{
		MaxSlotsPerDay:  12,
		MaxSlotsPerWeek: 30,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPreferenceServiceUpsertRejectsBadMatrix(t *testing.T) {
	service := NewTeacherPreferenceService(&prefStoreStub{}, teacherLookupStub{known: true}, nil, nil)

	cases := []map[string]map[string]int{
		{"sunday": {"9:00 AM": -1}},
		{"monday": {"noon": -1}},
		{"monday": {"9:00 AM": 5}},
	}
	for _, matrix := range cases {
		_, err := service.Upsert(context.Background(), "t1", dto.UpsertPreferenceRequest{
			MaxSlotsPerDay:     4,
			MaxSlotsPerWeek:    16,
			AvailableTimeSlots: matrix,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestPreferenceServiceUpsertUnknownTeacher(t *testing.T) {
	service := NewTeacherPreferenceService(&prefStoreStub{}, teacherLookupStub{known: false}, nil, nil)

	_, err := service.Upsert(context.Background(), "ghost", dto.UpsertPreferenceRequest{
		MaxSlotsPerDay:  4,
		MaxSlotsPerWeek: 16,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type prefStoreStub struct {
	stored   *models.TeacherPreference
	upserted *models.TeacherPreference
}

func (s *prefStoreStub) GetByTeacher(ctx context.Context, teacherID string) (*models.TeacherPreference, error) {
	if s.stored == nil {
		return nil, sql.ErrNoRows
	}
	return s.stored, nil
}

func (s *prefStoreStub) Upsert(ctx context.Context, pref *models.TeacherPreference) error {
	s.upserted = pref
	return nil
}

type teacherLookupStub struct {
	known bool
}

func (s teacherLookupStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if !s.known {
		return nil, sql.ErrNoRows
	}
	return &models.Teacher{ID: id, Active: true}, nil
}
