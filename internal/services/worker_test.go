package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeReportBuilder struct {
	mu    sync.Mutex
	built []uuid.UUID
	done  chan uuid.UUID
	err   error
}

func newFakeReportBuilder() *fakeReportBuilder {
	return &fakeReportBuilder{done: make(chan uuid.UUID, 16)}
}

func (f *fakeReportBuilder) BuildReport(ctx context.Context, reportID uuid.UUID) error {
	f.mu.Lock()
	f.built = append(f.built, reportID)
	f.mu.Unlock()
	f.done <- reportID
	return f.err
}

func (f *fakeReportBuilder) builtIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.built...)
}

func waitForBuilds(t *testing.T, builder *fakeReportBuilder, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-builder.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for build %d of %d", i+1, n)
		}
	}
}

func TestWorker_ProcessesEnqueuedJob(t *testing.T) {
	builder := newFakeReportBuilder()
	w := NewWorker(newFakeReportRepo(), builder, 2)

	w.Start(context.Background())
	defer w.Stop()

	reportID := uuid.New()
	w.EnqueueJob(reportID)

	waitForBuilds(t, builder, 1)

	built := builder.builtIDs()
	if len(built) != 1 || built[0] != reportID {
		t.Errorf("expected %s to be built, got %v", reportID, built)
	}
}

func TestWorker_ProcessesMultipleJobs(t *testing.T) {
	builder := newFakeReportBuilder()
	w := NewWorker(newFakeReportRepo(), builder, 3)

	w.Start(context.Background())
	defer w.Stop()

	want := map[uuid.UUID]bool{}
	for i := 0; i < 5; i++ {
		id := uuid.New()
		want[id] = true
		w.EnqueueJob(id)
	}

	waitForBuilds(t, builder, 5)

	built := builder.builtIDs()
	if len(built) != 5 {
		t.Fatalf("expected 5 builds, got %d", len(built))
	}
	for _, id := range built {
		if !want[id] {
			t.Errorf("unexpected report built: %s", id)
		}
	}
}

func TestWorker_BuilderErrorDoesNotStopProcessing(t *testing.T) {
	builder := newFakeReportBuilder()
	builder.err = errors.New("build failed")
	w := NewWorker(newFakeReportRepo(), builder, 1)

	w.Start(context.Background())
	defer w.Stop()

	w.EnqueueJob(uuid.New())
	w.EnqueueJob(uuid.New())

	waitForBuilds(t, builder, 2)

	if got := len(builder.builtIDs()); got != 2 {
		t.Errorf("expected 2 build attempts, got %d", got)
	}
}

func TestWorker_StopTerminates(t *testing.T) {
	builder := newFakeReportBuilder()
	w := NewWorker(newFakeReportRepo(), builder, 2)

	w.Start(context.Background())

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop in time")
	}
}

func TestWorker_EnqueueAfterStopDoesNotBlock(t *testing.T) {
	builder := newFakeReportBuilder()
	w := NewWorker(newFakeReportRepo(), builder, 1)

	w.Start(context.Background())
	w.Stop()

	returned := make(chan struct{})
	go func() {
		w.EnqueueJob(uuid.New())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("EnqueueJob blocked after Stop")
	}
}
