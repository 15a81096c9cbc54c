package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestVariantTable(t *testing.T) {
	tests := []struct {
		err         *Error
		code        Code
		status      int
		operational bool
	}{
		{NewValidation("Invalid email", "email"), CodeValidation, 400, true},
		{NewAuthentication(""), CodeAuthentication, 401, true},
		{NewAuthorization(""), CodeAuthorization, 403, true},
		{NewNotFound("Student"), CodeNotFound, 404, true},
		{NewConflict("exists"), CodeConflict, 409, true},
		{NewDatabase("boom", errors.New("pq: oops")), CodeDatabase, 500, false},
		{NewNetwork(""), CodeNetwork, 503, false},
		{NewUnknown("", nil), CodeUnknown, 500, false},
	}

	for _, tt := range tests {
		if tt.err.Code() != tt.code {
			t.Errorf("Code() = %v, want %v", tt.err.Code(), tt.code)
		}
		if tt.err.StatusCode() != tt.status {
			t.Errorf("%s StatusCode() = %d, want %d", tt.code, tt.err.StatusCode(), tt.status)
		}
		if tt.err.IsOperational() != tt.operational {
			t.Errorf("%s IsOperational() = %v, want %v", tt.code, tt.err.IsOperational(), tt.operational)
		}
		if !tt.err.IsOperational() && tt.err.StatusCode() < 500 {
			t.Errorf("%s is non-operational with status %d", tt.code, tt.err.StatusCode())
		}
	}
}

func TestDefaultMessages(t *testing.T) {
	if got := NewAuthentication("").Message(); got != "Authentication required" {
		t.Errorf("authentication default = %q", got)
	}
	if got := NewAuthorization("").Message(); got != "Insufficient permissions" {
		t.Errorf("authorization default = %q", got)
	}
	if got := NewNetwork("").Message(); got != "Network error occurred" {
		t.Errorf("network default = %q", got)
	}
	if got := NewNotFound("Student").Message(); got != "Student not found" {
		t.Errorf("not found message = %q", got)
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load student: %w", NewNotFound("Student"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("did not expect ErrConflict to match")
	}

	var ae *Error
	if !errors.As(err, &ae) || ae.StatusCode() != 404 {
		t.Fatalf("errors.As failed: %v", ae)
	}
}

func TestOriginalErrorOnlyForDatabase(t *testing.T) {
	cause := errors.New("duplicate key")
	db := NewDatabase("insert failed", cause)
	if db.OriginalError() != cause {
		t.Errorf("OriginalError() = %v, want %v", db.OriginalError(), cause)
	}
	if !errors.Is(db, cause) {
		t.Error("database error should unwrap to its cause")
	}

	u := NewUnknown("x", cause)
	if u.OriginalError() != nil {
		t.Errorf("unknown OriginalError() = %v, want nil", u.OriginalError())
	}
}

func TestWithCauseDoesNotMutate(t *testing.T) {
	orig := NewNetwork("down")
	cause := errors.New("ctx canceled")
	cp := orig.WithCause(cause)

	if orig.Unwrap() != nil {
		t.Error("original was mutated")
	}
	if cp.Unwrap() != cause || cp.Message() != "down" || cp.Code() != CodeNetwork {
		t.Errorf("copy = %+v", cp)
	}
}

func TestRetryable(t *testing.T) {
	if NewValidation("x", "").Retryable() {
		t.Error("validation must not be retryable")
	}
	if !NewNetwork("").Retryable() || !NewDatabase("x", nil).Retryable() || !NewUnknown("", nil).Retryable() {
		t.Error("infrastructure errors must be retryable")
	}
}

func TestStackCaptured(t *testing.T) {
	st := NewUnknown("x", nil).Stack()
	if !strings.Contains(st, "TestStackCaptured") {
		t.Errorf("stack does not contain caller:\n%s", st)
	}
	if ErrNetwork.Stack() != "" {
		t.Error("sentinel should have no stack")
	}
}

func TestVariantsComplete(t *testing.T) {
	vs := Variants()
	if len(vs) != 8 {
		t.Fatalf("len(Variants()) = %d, want 8", len(vs))
	}
	seen := map[Code]bool{}
	for _, v := range vs {
		if seen[v.Code] {
			t.Errorf("duplicate code %s", v.Code)
		}
		seen[v.Code] = true
		got, ok := Lookup(v.Code)
		if !ok || got != v {
			t.Errorf("Lookup(%s) = %+v, %v", v.Code, got, ok)
		}
	}
}
