package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// StudentGroupRepository reads the student group population.
type StudentGroupRepository struct {
	db *sqlx.DB
}

// NewStudentGroupRepository constructs a StudentGroupRepository.
func NewStudentGroupRepository(db *sqlx.DB) *StudentGroupRepository {
	return &StudentGroupRepository{db: db}
}

// ListActive returns active groups in creation order. A generation run
// schedules only the first group returned; callers run once per group for
// multi-group weeks.
func (r *StudentGroupRepository) ListActive(ctx context.Context) ([]models.StudentGroup, error) {
	const query = `SELECT id, name, grade, section, academic_year, strength, active, created_at, updated_at
FROM student_groups WHERE active = true ORDER BY created_at ASC, id ASC`
	var groups []models.StudentGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list active student groups: %w", err)
	}
	return groups, nil
}
