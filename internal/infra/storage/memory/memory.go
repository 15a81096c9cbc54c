package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vietddude/drivingschool/internal/core/domain"
	"github.com/vietddude/drivingschool/internal/core/report"
)

// MemoryStorage keeps students and error reports in process. Failures mirror
// what the Postgres driver would return so classification behaves the same.
type MemoryStorage struct {
	students map[string]*domain.Student
	reports  []report.Record
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		students: make(map[string]*domain.Student),
	}
}

// -----------------------------------------------------------------------------
// Student Repository
// -----------------------------------------------------------------------------

type StudentRepo struct {
	store *MemoryStorage
}

func NewStudentRepo(store *MemoryStorage) *StudentRepo {
	return &StudentRepo{store: store}
}

func (r *StudentRepo) Get(ctx context.Context, tenantID, id string) (*domain.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.students[id]
	if !ok || s.TenantID != tenantID {
		return nil, fmt.Errorf("failed to get student: %w", sql.ErrNoRows)
	}
	cp := *s
	return &cp, nil
}

func (r *StudentRepo) Create(ctx context.Context, s *domain.Student) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.students {
		if existing.TenantID == s.TenantID && existing.LicenceNumber == s.LicenceNumber {
			return fmt.Errorf("failed to create student: %w", &pgconn.PgError{
				Severity:       "ERROR",
				Code:           "23505",
				Message:        `duplicate key value violates unique constraint "students_tenant_id_licence_number_key"`,
				Detail:         fmt.Sprintf("Key (tenant_id, licence_number)=(%s, %s) already exists.", s.TenantID, s.LicenceNumber),
				TableName:      "students",
				ConstraintName: "students_tenant_id_licence_number_key",
			})
		}
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = domain.StudentStatusActive
	}
	s.CreatedAt = time.Now().UTC()
	cp := *s
	r.store.students[s.ID] = &cp
	return nil
}

func (r *StudentRepo) List(ctx context.Context, tenantID string, limit int) ([]*domain.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Student
	for _, s := range r.store.students {
		if s.TenantID == tenantID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Report Repository
// -----------------------------------------------------------------------------

type ReportRepo struct {
	store *MemoryStorage
	limit int
}

// NewReportRepo keeps at most limit records; 0 means 1000.
func NewReportRepo(store *MemoryStorage, limit int) *ReportRepo {
	if limit <= 0 {
		limit = 1000
	}
	return &ReportRepo{store: store, limit: limit}
}

func (r *ReportRepo) Name() string { return "memory" }

func (r *ReportRepo) Write(ctx context.Context, rec report.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.reports = append(r.store.reports, rec)
	if over := len(r.store.reports) - r.limit; over > 0 {
		r.store.reports = append([]report.Record(nil), r.store.reports[over:]...)
	}
	return nil
}

func (r *ReportRepo) Recent(ctx context.Context, limit int) ([]report.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := len(r.store.reports)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]report.Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.store.reports[i])
	}
	return out, nil
}
