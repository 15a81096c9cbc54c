package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vietddude/drivingschool/internal/core/domain"
)

// StudentRepo implements storage.StudentRepository using PostgreSQL.
// Driver errors are wrapped with %w so the classifier can inspect them.
type StudentRepo struct {
	db *DB
}

// NewStudentRepo creates a new PostgreSQL student repository.
func NewStudentRepo(db *DB) *StudentRepo {
	return &StudentRepo{db: db}
}

// Get retrieves a student by ID.
func (r *StudentRepo) Get(ctx context.Context, tenantID, id string) (*domain.Student, error) {
	query := `
		SELECT id, tenant_id, first_name, last_name, email, licence_number, category, status, created_at
		FROM students
		WHERE tenant_id = $1 AND id = $2
	`
	var s domain.Student
	if err := r.db.GetContext(ctx, &s, query, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// Create inserts a student, assigning an ID when missing.
func (r *StudentRepo) Create(ctx context.Context, s *domain.Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = domain.StudentStatusActive
	}

	query := `
		INSERT INTO students (id, tenant_id, first_name, last_name, email, licence_number, category, status)
		VALUES (:id, :tenant_id, :first_name, :last_name, :email, :licence_number, :category, :status)
		RETURNING created_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if rows.Next() {
		if err := rows.Scan(&s.CreatedAt); err != nil {
			return fmt.Errorf("failed to read student timestamp: %w", err)
		}
	}
	return rows.Err()
}

// List returns students of a tenant, newest first.
func (r *StudentRepo) List(ctx context.Context, tenantID string, limit int) ([]*domain.Student, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, first_name, last_name, email, licence_number, category, status, created_at
		FROM students
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var students []*domain.Student
	if err := r.db.SelectContext(ctx, &students, query, tenantID, limit); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}
