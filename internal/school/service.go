// Package school exposes student operations backed by a repository, with every
// storage call running through the resilient executor.
package school

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/domain"
	"github.com/vietddude/drivingschool/internal/core/resilient"
	"github.com/vietddude/drivingschool/internal/infra/storage"
)

// Service provides student operations.
type Service struct {
	repo storage.StudentRepository
	exec *resilient.Executor
}

// NewService creates a student service.
func NewService(repo storage.StudentRepository, exec *resilient.Executor) *Service {
	return &Service{repo: repo, exec: exec}
}

// GetStudent loads one student of a tenant.
func (s *Service) GetStudent(ctx context.Context, tenantID, id string) (*domain.Student, error) {
	st, err := resilient.Execute(ctx, s.exec, func(ctx context.Context) (*domain.Student, error) {
		return s.repo.Get(ctx, tenantID, id)
	},
		resilient.WithOperation("getStudent"),
		resilient.WithFields(map[string]any{"tenant": tenantID, "student_id": id}),
	)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NewNotFound("Student")
	}
	return st, err
}

// EnrollStudent validates and stores a new student.
func (s *Service) EnrollStudent(ctx context.Context, st *domain.Student) error {
	if err := validateStudent(st); err != nil {
		return err
	}

	return resilient.Do(ctx, s.exec, func(ctx context.Context) error {
		return s.repo.Create(ctx, st)
	},
		resilient.WithOperation("enrollStudent"),
		resilient.WithFields(map[string]any{"tenant": st.TenantID}),
	)
}

// ListStudents returns the newest students of a tenant.
func (s *Service) ListStudents(ctx context.Context, tenantID string, limit int) ([]*domain.Student, error) {
	return resilient.Execute(ctx, s.exec, func(ctx context.Context) ([]*domain.Student, error) {
		return s.repo.List(ctx, tenantID, limit)
	},
		resilient.WithOperation("listStudents"),
		resilient.WithFields(map[string]any{"tenant": tenantID}),
	)
}

func validateStudent(st *domain.Student) error {
	switch {
	case st == nil:
		return apperr.NewValidation("Student is required", "")
	case strings.TrimSpace(st.TenantID) == "":
		return apperr.NewValidation("Tenant is required", "tenant_id")
	case strings.TrimSpace(st.FirstName) == "":
		return apperr.NewValidation("First name is required", "first_name")
	case strings.TrimSpace(st.LastName) == "":
		return apperr.NewValidation("Last name is required", "last_name")
	case strings.TrimSpace(st.LicenceNumber) == "":
		return apperr.NewValidation("Licence number is required", "licence_number")
	}
	if _, err := mail.ParseAddress(st.Email); err != nil {
		return apperr.NewValidation("Invalid email", "email")
	}
	switch st.Category {
	case domain.LicenceClassA, domain.LicenceClassB, domain.LicenceClassC, domain.LicenceClassD:
	default:
		return apperr.NewValidation("Unknown licence category", "category")
	}
	return nil
}
