package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// TeacherRepository reads the teacher roster consumed by the generator.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// ListActive returns active teachers in roster order (creation order) with
// their qualified subjects attached. Subject order follows the position
// column of teacher_subjects; the generator assigns the first listed subject,
// so the ORDER BY matters.
func (r *TeacherRepository) ListActive(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, email, full_name, phone, active, created_at, updated_at
FROM teachers WHERE active = true ORDER BY created_at ASC, id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	if len(teachers) == 0 {
		return teachers, nil
	}

	const subjectQuery = `SELECT teacher_id, subject_id FROM teacher_subjects ORDER BY teacher_id, position ASC`
	rows, err := r.db.QueryxContext(ctx, subjectQuery)
	if err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	defer rows.Close()

	subjectsByTeacher := make(map[string][]string)
	for rows.Next() {
		var teacherID, subjectID string
		if err := rows.Scan(&teacherID, &subjectID); err != nil {
			return nil, fmt.Errorf("scan teacher subject: %w", err)
		}
		subjectsByTeacher[teacherID] = append(subjectsByTeacher[teacherID], subjectID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teacher subjects: %w", err)
	}

	for i := range teachers {
		teachers[i].SubjectIDs = subjectsByTeacher[teachers[i].ID]
	}
	return teachers, nil
}

// FindByID returns one teacher with qualified subjects attached.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, email, full_name, phone, active, created_at, updated_at
FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}

	const subjectQuery = `SELECT subject_id FROM teacher_subjects WHERE teacher_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &teacher.SubjectIDs, subjectQuery, id); err != nil {
		return nil, fmt.Errorf("list subjects for teacher %s: %w", id, err)
	}
	return &teacher, nil
}
