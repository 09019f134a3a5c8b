package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorly/proctorly-backend/internal/model"
)

// ExamRepository handles exam data access. Questions are stored as a JSONB
// document on the exam row, mirroring the embedded question shape.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID, including its full question set.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var questions []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, teacher_id, duration_minutes,
		        questions, is_active, created_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.TeacherID, &e.DurationMinutes,
		&questions, &e.IsActive, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &e.Questions); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByTeacher retrieves all exams owned by a teacher, newest first.
func (r *ExamRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, teacher_id, duration_minutes,
		        questions, is_active, created_at
		 FROM exams WHERE teacher_id = $1
		 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		var questions []byte
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.TeacherID,
			&e.DurationMinutes, &questions, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(questions, &e.Questions); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, teacher_id, duration_minutes, questions, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		e.Title, e.Description, e.TeacherID, e.DurationMinutes, questions, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt)
}
