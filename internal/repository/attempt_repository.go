package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorly/proctorly-backend/internal/model"
)

// AttemptRepository handles exam attempt data access. The answer sequence is
// stored as a JSONB document, matching the embedded-question storage style.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new attempt record. Attempts are insert-only; there is no
// update path.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ExamAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts
		   (exam_id, student_name, student_email, answers, score, total_questions,
		    started_at, finished_at, warning_count, is_completed, was_terminated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		a.ExamID, a.StudentName, a.StudentEmail, answers, a.Score, a.TotalQuestions,
		a.StartedAt, a.FinishedAt, a.WarningCount, a.IsCompleted, a.WasTerminated,
	).Scan(&a.ID)
}

// ListByExam retrieves all attempts for an exam, in storage order.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_name, student_email, answers, score,
		        total_questions, started_at, finished_at, warning_count,
		        is_completed, was_terminated
		 FROM exam_attempts WHERE exam_id = $1`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.ExamAttempt
	for rows.Next() {
		var a model.ExamAttempt
		var answers []byte
		if err := rows.Scan(&a.ID, &a.ExamID, &a.StudentName, &a.StudentEmail,
			&answers, &a.Score, &a.TotalQuestions, &a.StartedAt, &a.FinishedAt,
			&a.WarningCount, &a.IsCompleted, &a.WasTerminated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
