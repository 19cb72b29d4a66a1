package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dineshrk/timegrid-api/internal/models"
)

// ClassroomRepository reads the classroom inventory.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// ListActive returns active classrooms ordered by name. The generator hands
// out rooms first-free-wins in this order, so it must be stable across runs.
func (r *ClassroomRepository) ListActive(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT id, name, capacity, equipment, active, created_at, updated_at
FROM classrooms WHERE active = true ORDER BY name ASC, id ASC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("list active classrooms: %w", err)
	}
	return classrooms, nil
}
