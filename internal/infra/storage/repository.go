package storage

import (
	"context"

	"github.com/vietddude/drivingschool/internal/core/domain"
	"github.com/vietddude/drivingschool/internal/core/report"
)

// StudentRepository handles student storage operations. Implementations
// return raw driver errors; callers classify them.
type StudentRepository interface {
	// Get retrieves a student by ID
	Get(ctx context.Context, tenantID, id string) (*domain.Student, error)

	// Create inserts a new student
	Create(ctx context.Context, s *domain.Student) error

	// List returns students of a tenant, newest first
	List(ctx context.Context, tenantID string, limit int) ([]*domain.Student, error)
}

// ReportRepository persists reported error records
type ReportRepository interface {
	report.Sink

	// Recent returns the latest records, newest first
	Recent(ctx context.Context, limit int) ([]report.Record, error)
}
