package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/proctorly/proctorly-backend/internal/model"
)

// Store interfaces consumed by the services. The pgx-backed repositories
// satisfy them; tests substitute in-memory fakes. A missing row is reported
// as pgx.ErrNoRows by the real implementations.

// TeacherStore persists teacher accounts, with unique lookup by email.
type TeacherStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Teacher, error)
	GetByID(ctx context.Context, id int) (*model.Teacher, error)
	Create(ctx context.Context, t *model.Teacher) error
}

// ExamStore persists exams, with indexed lookup by owning teacher.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListByTeacher(ctx context.Context, teacherID int) ([]model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
}

// AttemptStore persists attempts, with indexed lookup by exam.
type AttemptStore interface {
	Create(ctx context.Context, a *model.ExamAttempt) error
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamAttempt, error)
}
