package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dineshrk/timegrid-api/internal/dto"
	"github.com/dineshrk/timegrid-api/internal/models"
	appErrors "github.com/dineshrk/timegrid-api/pkg/errors"
	"github.com/dineshrk/timegrid-api/pkg/export"
)

const activeSnapshotKey = "timegrid:timetable:active"

type timetableReader interface {
	Active(ctx context.Context) (*models.Timetable, error)
	ListSlots(ctx context.Context, timetableID string, filter models.SlotFilter) ([]models.TimetableSlotDetail, error)
}

// TimetableService serves the published timetable: week view, per-teacher and
// per-group queries, CSV/PDF export. The active week view is snapshotted in
// Redis; the generator invalidates the snapshot when it publishes a new
// version.
type TimetableService struct {
	repo       timetableReader
	redis      *redis.Client
	ttl        time.Duration
	schoolName string
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewTimetableService wires the read path. redis may be nil, which disables
// snapshotting.
func NewTimetableService(repo timetableReader, redisClient *redis.Client, ttl time.Duration, schoolName string, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TimetableService{
		repo:       repo,
		redis:      redisClient,
		ttl:        ttl,
		schoolName: schoolName,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// Active returns the published week grouped by day, slots in canonical order.
func (s *TimetableService) Active(ctx context.Context) (*dto.TimetableView, error) {
	if view, ok := s.snapshot(ctx); ok {
		return view, nil
	}

	timetable, err := s.repo.Active(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable published")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}

	details, err := s.repo.ListSlots(ctx, timetable.ID, models.SlotFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	view := buildWeekView(timetable, details)
	s.storeSnapshot(ctx, view)
	return view, nil
}

// ByTeacher returns the active week's slots for one teacher.
func (s *TimetableService) ByTeacher(ctx context.Context, teacherID string) ([]dto.SlotView, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	return s.filteredSlots(ctx, models.SlotFilter{TeacherID: teacherID})
}

// ByGroup returns the active week's slots for one student group.
func (s *TimetableService) ByGroup(ctx context.Context, groupID string) ([]dto.SlotView, error) {
	if groupID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student group id is required")
	}
	return s.filteredSlots(ctx, models.SlotFilter{StudentGroupID: groupID})
}

// ByDay returns the active week's slots for one calendar day.
func (s *TimetableService) ByDay(ctx context.Context, dayName string) ([]dto.SlotView, error) {
	day := dayIndexFold(dayName)
	if day < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", dayName))
	}
	return s.filteredSlots(ctx, models.SlotFilter{DayOfWeek: &day})
}

// ExportCSV renders the active week as CSV.
func (s *TimetableService) ExportCSV(ctx context.Context) ([]byte, error) {
	view, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(weekGridFromView(view, s.schoolName))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return data, nil
}

// ExportPDF renders the active week as a one-page PDF.
func (s *TimetableService) ExportPDF(ctx context.Context) ([]byte, error) {
	view, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(weekGridFromView(view, s.schoolName))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return data, nil
}

// InvalidateActive drops the cached week view. Called after a publish.
func (s *TimetableService) InvalidateActive(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, activeSnapshotKey).Err()
}

func (s *TimetableService) filteredSlots(ctx context.Context, filter models.SlotFilter) ([]dto.SlotView, error) {
	timetable, err := s.repo.Active(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable published")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}
	details, err := s.repo.ListSlots(ctx, timetable.ID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}
	return lo.Map(details, func(d models.TimetableSlotDetail, _ int) dto.SlotView {
		return slotDetailView(d)
	}), nil
}

func (s *TimetableService) snapshot(ctx context.Context) (*dto.TimetableView, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, activeSnapshotKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("snapshot read failed", zap.Error(err))
		}
		return nil, false
	}
	var view dto.TimetableView
	if err := json.Unmarshal(raw, &view); err != nil {
		s.logger.Warn("snapshot decode failed", zap.Error(err))
		return nil, false
	}
	return &view, true
}

func (s *TimetableService) storeSnapshot(ctx context.Context, view *dto.TimetableView) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		s.logger.Warn("snapshot encode failed", zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, activeSnapshotKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("snapshot write failed", zap.Error(err))
	}
}

func slotDetailView(d models.TimetableSlotDetail) dto.SlotView {
	return dto.SlotView{
		Day:              d.DayName(),
		TimeSlot:         d.TimeSlotLabel(),
		TeacherID:        d.TeacherID,
		TeacherName:      d.TeacherName,
		SubjectID:        d.SubjectID,
		SubjectName:      d.SubjectName,
		ClassroomID:      d.ClassroomID,
		ClassroomName:    d.ClassroomName,
		StudentGroupID:   d.StudentGroupID,
		StudentGroupName: d.StudentGroupName,
	}
}

func buildWeekView(timetable *models.Timetable, details []models.TimetableSlotDetail) *dto.TimetableView {
	byDay := lo.GroupBy(details, func(d models.TimetableSlotDetail) int { return d.DayOfWeek })

	days := make([]dto.DayView, 0, len(models.WeekDays))
	for day, name := range models.WeekDays {
		slots := byDay[day]
		views := make([]dto.SlotView, 0, len(slots))
		for _, d := range slots {
			views = append(views, slotDetailView(d))
		}
		days = append(days, dto.DayView{Day: name, Slots: views})
	}

	return &dto.TimetableView{
		TimetableID:    timetable.ID,
		StudentGroupID: timetable.StudentGroupID,
		Version:        timetable.Version,
		Days:           days,
	}
}

func weekGridFromView(view *dto.TimetableView, title string) export.WeekGrid {
	grid := export.WeekGrid{
		Title:      fmt.Sprintf("%s - Weekly Timetable (v%d)", title, view.Version),
		SlotLabels: models.SlotLabels,
		Days:       make([]export.DayRow, 0, len(view.Days)),
	}
	for _, day := range view.Days {
		cells := make([]string, len(models.SlotLabels))
		for _, slot := range day.Slots {
			idx := models.SlotIndex(slot.TimeSlot)
			if idx < 0 {
				continue
			}
			cells[idx] = fmt.Sprintf("%s / %s / %s", slot.SubjectName, slot.TeacherName, slot.ClassroomName)
		}
		grid.Days = append(grid.Days, export.DayRow{Day: day.Day, Cells: cells})
	}
	return grid
}
