package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Update when the job does not exist.
var ErrNotFound = errors.New("job not found")

const jobColumns = "id, batch_id, title, voice, speed, status, title_end, caption_count, audio_seconds, audio_path, output_path, error_kind, error, created_at, updated_at"

// Create inserts job, assigning an ID and timestamps when unset.
func (s *Store) Create(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("create job: nil job")
	}
	if strings.TrimSpace(job.Title) == "" {
		return errors.New("create job: title is required")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = StatusPending
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		nullableString(job.BatchID),
		job.Title,
		job.Voice,
		job.Speed,
		job.Status,
		job.TitleEnd,
		job.CaptionCount,
		job.AudioSeconds,
		nullableString(job.AudioPath),
		nullableString(job.OutputPath),
		nullableString(job.ErrorKind),
		nullableString(job.ErrorMessage),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update persists every mutable field of job and bumps updated_at.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil || job.ID == "" {
		return errors.New("update job: missing id")
	}
	job.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET
            status = ?, title_end = ?, caption_count = ?, audio_seconds = ?,
            audio_path = ?, output_path = ?, error_kind = ?, error = ?, updated_at = ?
         WHERE id = ?`,
		job.Status,
		job.TitleEnd,
		job.CaptionCount,
		job.AudioSeconds,
		nullableString(job.AudioPath),
		nullableString(job.OutputPath),
		nullableString(job.ErrorKind),
		nullableString(job.ErrorMessage),
		formatTime(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, job.ID)
	}
	return nil
}

// Get returns the job with the given ID, or nil when it does not exist.
// A unique ID prefix of at least four characters is also accepted.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if len(id) < 4 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id LIKE ? ORDER BY created_at LIMIT 2`, id+"%")
	if err != nil {
		return nil, fmt.Errorf("get job by prefix: %w", err)
	}
	defer rows.Close()
	matches, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("job id prefix %q is ambiguous", id)
	}
}

// ListOptions filters List results.
type ListOptions struct {
	Statuses []Status
	BatchID  string
	// Limit caps the number of rows; zero or negative means no limit.
	Limit int
}

// List returns jobs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Job, error) {
	var (
		where []string
		args  []any
	)
	if len(opts.Statuses) > 0 {
		where = append(where, `status IN (`+makePlaceholders(len(opts.Statuses))+`)`)
		for _, status := range opts.Statuses {
			args = append(args, status)
		}
	}
	if opts.BatchID != "" {
		where = append(where, `batch_id = ?`)
		args = append(args, opts.BatchID)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// MarkInterrupted fails jobs left in a processing state by a run that died.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	args := []any{StatusFailed, "interrupted", InterruptedReason, formatTime(time.Now().UTC())}
	for _, status := range processingStatuses {
		args = append(args, status)
	}
	args = append(args, StatusPending)
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_kind = ?, error = ?, updated_at = ?
         WHERE status IN (`+makePlaceholders(len(processingStatuses)+1)+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// ClearFinished deletes terminal jobs last updated before cutoff. A zero
// cutoff removes all of them.
func (s *Store) ClearFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM jobs WHERE status IN (?, ?, ?)`
	args := []any{StatusCompleted, StatusFailed, StatusCanceled}
	if !cutoff.IsZero() {
		query += ` AND updated_at < ?`
		args = append(args, formatTime(cutoff.UTC()))
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear finished jobs: %w", err)
	}
	return res.RowsAffected()
}
