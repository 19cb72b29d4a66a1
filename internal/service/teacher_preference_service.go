package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dineshrk/timegrid-api/internal/dto"
	"github.com/dineshrk/timegrid-api/internal/models"
	appErrors "github.com/dineshrk/timegrid-api/pkg/errors"
)

type preferenceStore interface {
	GetByTeacher(ctx context.Context, teacherID string) (*models.TeacherPreference, error)
	Upsert(ctx context.Context, pref *models.TeacherPreference) error
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// TeacherPreferenceService manages the availability and capacity records the
// generator consumes. A later manual-override workflow goes through the same
// contract, so validation lives here rather than in the generator.
type TeacherPreferenceService struct {
	prefs     preferenceStore
	teachers  teacherLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherPreferenceService wires the service.
func NewTeacherPreferenceService(prefs preferenceStore, teachers teacherLookup, validate *validator.Validate, logger *zap.Logger) *TeacherPreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherPreferenceService{prefs: prefs, teachers: teachers, validator: validate, logger: logger}
}

// Get returns the stored preference for a teacher, or the defaults when none
// exists; absence is the common case, not an error.
func (s *TeacherPreferenceService) Get(ctx context.Context, teacherID string) (*models.TeacherPreference, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	pref, err := s.prefs.GetByTeacher(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.TeacherPreference{
				TeacherID:       teacherID,
				MaxSlotsPerDay:  models.DefaultMaxSlotsPerDay,
				MaxSlotsPerWeek: models.DefaultMaxSlotsPerWeek,
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher preference")
	}
	return pref, nil
}

// Upsert validates and stores a preference record.
func (s *TeacherPreferenceService) Upsert(ctx context.Context, teacherID string, req dto.UpsertPreferenceRequest) (*models.TeacherPreference, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	if req.MaxSlotsPerWeek < req.MaxSlotsPerDay {
		return nil, appErrors.Clone(appErrors.ErrValidation, "maxSlotsPerWeek must be greater than or equal to maxSlotsPerDay")
	}
	if err := validateMatrix(req.AvailableTimeSlots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability matrix")
	}

	if s.teachers != nil {
		if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		}
	}

	matrix := req.AvailableTimeSlots
	if matrix == nil {
		matrix = map[string]map[string]int{}
	}
	raw, err := json.Marshal(matrix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode availability matrix")
	}

	pref := &models.TeacherPreference{
		TeacherID:          teacherID,
		MaxSlotsPerDay:     req.MaxSlotsPerDay,
		MaxSlotsPerWeek:    req.MaxSlotsPerWeek,
		AvailableTimeSlots: raw,
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store teacher preference")
	}
	s.logger.Info("teacher preference stored",
		zap.String("teacher_id", teacherID),
		zap.Int("max_per_day", req.MaxSlotsPerDay),
		zap.Int("max_per_week", req.MaxSlotsPerWeek),
	)
	return pref, nil
}

func validateMatrix(matrix map[string]map[string]int) error {
	for dayName, slots := range matrix {
		if dayIndexFold(dayName) < 0 {
			return fmt.Errorf("unknown day %q", dayName)
		}
		for label, value := range slots {
			if models.SlotIndex(label) < 0 {
				return fmt.Errorf("unknown time slot %q", label)
			}
			if value < -1 || value > 1 {
				return fmt.Errorf("preference for %s %s must be -1, 0 or 1", dayName, label)
			}
		}
	}
	return nil
}
