package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/config"
	"github.com/vietddude/drivingschool/internal/core/domain"
)

func memoryConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Parse([]byte("server:\n  port: 0\nretry:\n  base_delay: 1ms\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cfg
}

func TestNewAppMemoryMode(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, memoryConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	app.Reporter().Start(ctx)

	st := &domain.Student{
		TenantID: "north", FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", LicenceNumber: "C-7", Category: domain.LicenceClassC,
	}
	if err := app.Students().EnrollStudent(ctx, st); err != nil {
		t.Fatalf("EnrollStudent failed: %v", err)
	}
	dup := *st
	dup.ID = ""
	err = app.Students().EnrollStudent(ctx, &dup)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate enroll err = %v, want conflict", err)
	}

	res := app.Presenter().Present(err, map[string]any{"screen": "enrolment"})
	if res.StatusCode != 409 || res.Message != "This resource already exists" {
		t.Errorf("presented = %+v", res)
	}

	app.Close()

	// One record from the executor, one from the presenter.
	recs, err := app.Reports().Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d reports, want 2", len(recs))
	}
	if recs[0].Context["screen"] != "enrolment" {
		t.Errorf("newest report context = %v", recs[0].Context)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
