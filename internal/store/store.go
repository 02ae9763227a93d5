package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store provides persistence for saved tasks and run records.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Task is a saved, reusable task.
type Task struct {
	ID        string
	CreatedAt time.Time
	Text      string
}

// RunRecord captures the terminal outcome of one agent run.
type RunRecord struct {
	ID        string
	CreatedAt time.Time
	Task      string
	Model     string
	Outcome   string
	Steps     int
	Summary   string
}

// SaveTask stores a task for reuse. Saving the same text twice is a
// no-op.
func (s *Store) SaveTask(ctx context.Context, text string) (Task, error) {
	t := Task{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Text:      text,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(task_id, created_at, text) VALUES(?, ?, ?)
		 ON CONFLICT(text) DO NOTHING`,
		t.ID, t.CreatedAt.Format(time.RFC3339), t.Text)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// ListTasks returns saved tasks, oldest first.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, created_at, text FROM tasks ORDER BY created_at, task_id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []Task
	for rows.Next() {
		var t Task
		var createdAt string
		if err := rows.Scan(&t.ID, &createdAt, &t.Text); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// DeleteTask removes a saved task by id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordRun inserts the terminal record of a run.
func (s *Store) RecordRun(ctx context.Context, task, model, outcome string, steps int, summary string) (RunRecord, error) {
	r := RunRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Task:      task,
		Model:     model,
		Outcome:   outcome,
		Steps:     steps,
		Summary:   summary,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(run_id, created_at, task, model, outcome, steps, summary)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.Format(time.RFC3339), r.Task, r.Model, r.Outcome, r.Steps, r.Summary)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent run records, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at, task, model, outcome, steps, summary
		 FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.Task, &r.Model, &r.Outcome, &r.Steps, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}
