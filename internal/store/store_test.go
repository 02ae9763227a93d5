package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestSaveTask_DuplicateTextIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveTask(ctx, "clean up /tmp")
	if err != nil {
		t.Fatalf("SaveTask: %v", err)
	}
	if _, err := s.SaveTask(ctx, "clean up /tmp"); err != nil {
		t.Fatalf("duplicate SaveTask: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].ID != first.ID || tasks[0].Text != "clean up /tmp" {
		t.Errorf("stored task = %+v", tasks[0])
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.SaveTask(ctx, "rotate logs")
	if err != nil {
		t.Fatalf("SaveTask: %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks after delete", len(tasks))
	}
}

func TestRecordRunAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordRun(ctx, "task a", "llama3", "done", 4, "all good"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if _, err := s.RecordRun(ctx, "task b", "llama3", "failure ceiling reached", 3, ""); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	tasks := map[string]RunRecord{}
	for _, r := range runs {
		tasks[r.Task] = r
	}
	if r := tasks["task a"]; r.Outcome != "done" || r.Steps != 4 || r.Summary != "all good" {
		t.Errorf("task a record = %+v", r)
	}
	if r := tasks["task b"]; r.Outcome != "failure ceiling reached" || r.Steps != 3 {
		t.Errorf("task b record = %+v", r)
	}

	limited, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d runs with limit 1", len(limited))
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Insert with explicit timestamps; RFC3339 only has second
	// resolution, so back-to-back RecordRun calls may tie.
	rows := []struct{ id, at, task string }{
		{"r1", "2026-08-01T10:00:00Z", "old"},
		{"r2", "2026-08-02T10:00:00Z", "mid"},
		{"r3", "2026-08-03T10:00:00Z", "new"},
	}
	for _, r := range rows {
		if _, err := s.DB().ExecContext(ctx,
			`INSERT INTO runs(run_id, created_at, task, model, outcome, steps, summary)
			 VALUES(?, ?, ?, 'm', 'done', 1, '')`, r.id, r.at, r.task); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].Task != "new" || runs[1].Task != "mid" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestOpen_MigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := NewStore(db).SaveTask(context.Background(), "persisted"); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}
	_ = db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = db.Close() }()

	tasks, err := NewStore(db).ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "persisted" {
		t.Errorf("tasks after reopen = %+v", tasks)
	}
}
