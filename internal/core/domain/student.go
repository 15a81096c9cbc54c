package domain

import (
	"time"
)

// Student represents a learner enrolled at a driving school tenant
type Student struct {
	ID            string        `json:"id"             db:"id"`
	TenantID      string        `json:"tenant_id"      db:"tenant_id"`
	FirstName     string        `json:"first_name"     db:"first_name"`
	LastName      string        `json:"last_name"      db:"last_name"`
	Email         string        `json:"email"          db:"email"`
	LicenceNumber string        `json:"licence_number" db:"licence_number"`
	Category      LicenceClass  `json:"category"       db:"category"`
	Status        StudentStatus `json:"status"         db:"status"`
	CreatedAt     time.Time     `json:"created_at"     db:"created_at"`
}

type LicenceClass string

const (
	LicenceClassA LicenceClass = "A"
	LicenceClassB LicenceClass = "B"
	LicenceClassC LicenceClass = "C"
	LicenceClassD LicenceClass = "D"
)

type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusSuspended StudentStatus = "suspended"
	StudentStatusGraduated StudentStatus = "graduated"
)
