package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// TimetableRepository persists generated timetables. Publishing is a single
// transaction: compute the next version, archive the previous active week,
// insert the new header and all slot rows. Readers querying the active
// version therefore never observe a half-built week.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Publish atomically swaps in a fully generated week.
func (r *TimetableRepository) Publish(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.StudentGroupID == "" {
		return fmt.Errorf("student_group_id is required")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusActive
	}
	now := time.Now().UTC()
	if timetable.GeneratedAt.IsZero() {
		timetable.GeneratedAt = now
	}
	timetable.CreatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE student_group_id = $1`
	if err = tx.GetContext(ctx, &timetable.Version, nextVersionQuery, timetable.StudentGroupID); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const archiveQuery = `UPDATE timetables SET status = $1 WHERE student_group_id = $2 AND status = $3`
	if _, err = tx.ExecContext(ctx, archiveQuery, models.TimetableStatusArchived, timetable.StudentGroupID, models.TimetableStatusActive); err != nil {
		return fmt.Errorf("archive previous timetable: %w", err)
	}

	const insertQuery = `INSERT INTO timetables (id, student_group_id, version, status, filled_cells, unfilled_cells, generated_at, created_at)
		VALUES (:id, :student_group_id, :version, :status, :filled_cells, :unfilled_cells, :generated_at, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}

	const slotQuery = `INSERT INTO timetable_slots (id, timetable_id, day_of_week, slot_index, teacher_id, subject_id, classroom_id, student_group_id, created_at)
		VALUES (:id, :timetable_id, :day_of_week, :slot_index, :teacher_id, :subject_id, :classroom_id, :student_group_id, :created_at)`
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.TimetableID = timetable.ID
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err = tx.NamedExecContext(ctx, slotQuery, slot); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit publish transaction: %w", err)
	}
	return nil
}

// Active returns the currently published timetable header.
func (r *TimetableRepository) Active(ctx context.Context) (*models.Timetable, error) {
	const query = `SELECT id, student_group_id, version, status, filled_cells, unfilled_cells, generated_at, created_at
FROM timetables WHERE status = $1 ORDER BY generated_at DESC LIMIT 1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, models.TimetableStatusActive); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListSlots returns slot detail rows for a timetable, joined with display
// names and ordered by day then canonical slot position.
func (r *TimetableRepository) ListSlots(ctx context.Context, timetableID string, filter models.SlotFilter) ([]models.TimetableSlotDetail, error) {
	base := `SELECT s.id, s.timetable_id, s.day_of_week, s.slot_index, s.teacher_id, s.subject_id, s.classroom_id, s.student_group_id, s.created_at,
	t.full_name AS teacher_name, sub.name AS subject_name, c.name AS classroom_name, g.name AS student_group_name
FROM timetable_slots s
JOIN teachers t ON t.id = s.teacher_id
JOIN subjects sub ON sub.id = s.subject_id
JOIN classrooms c ON c.id = s.classroom_id
JOIN student_groups g ON g.id = s.student_group_id
WHERE s.timetable_id = $1`
	args := []interface{}{timetableID}
	var conditions []string

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("s.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.StudentGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("s.student_group_id = $%d", len(args)+1))
		args = append(args, filter.StudentGroupID)
	}
	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("s.day_of_week = $%d", len(args)+1))
		args = append(args, *filter.DayOfWeek)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	base += " ORDER BY s.day_of_week ASC, s.slot_index ASC"

	var details []models.TimetableSlotDetail
	if err := r.db.SelectContext(ctx, &details, base, args...); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return details, nil
}
