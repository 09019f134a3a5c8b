package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/rs/zerolog"
)

// AttemptService coordinates attempt submission and the teacher's results
// view. Each submission inserts exactly one attempt record; callers own the
// at-most-one-call-per-session guarantee.
type AttemptService struct {
	exams    ExamStore
	attempts AttemptStore
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(exams ExamStore, attempts AttemptStore, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		exams:    exams,
		attempts: attempts,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// SubmitParams carries the final answer set plus proctoring telemetry for
// one submission.
type SubmitParams struct {
	ExamID        uuid.UUID
	StudentName   string
	StudentEmail  *string
	Answers       []int
	WarningCount  int
	WasTerminated bool

	// StartedAt is the true session start when the proctored stream supplies
	// one. When nil, the start is approximated as end minus the exam
	// duration, matching the behavior of direct submissions where the real
	// start instant was never captured.
	StartedAt *time.Time
}

// Submit scores the answers against the exam's key and persists one attempt.
// Scoring never fails; the only failure mode is an unresolvable exam.
// Deactivated exams are still accepted so a student mid-session is not
// stranded by a concurrent closure.
func (s *AttemptService) Submit(ctx context.Context, p SubmitParams) (*model.ExamAttempt, error) {
	exam, err := s.exams.GetByID(ctx, p.ExamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	now := time.Now()
	startedAt := now.Add(-time.Duration(exam.DurationMinutes) * time.Minute)
	if p.StartedAt != nil {
		startedAt = *p.StartedAt
	}

	answers := p.Answers
	if answers == nil {
		answers = []int{}
	}

	attempt := &model.ExamAttempt{
		ExamID:         exam.ID,
		StudentName:    p.StudentName,
		StudentEmail:   p.StudentEmail,
		Answers:        answers,
		Score:          Score(AnswerKey(exam.Questions), answers),
		TotalQuestions: len(exam.Questions),
		StartedAt:      startedAt,
		FinishedAt:     now,
		WarningCount:   p.WarningCount,
		IsCompleted:    !p.WasTerminated,
		WasTerminated:  p.WasTerminated,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("attempt_id", attempt.ID.String()).
		Int("score", attempt.Score).
		Int("warnings", attempt.WarningCount).
		Bool("terminated", attempt.WasTerminated).
		Msg("Attempt submitted")
	return attempt, nil
}

// Results returns the full exam, its attempts, and derived statistics for
// the owning teacher. Ownership is enforced the same way as GetFull.
func (s *AttemptService) Results(ctx context.Context, examID uuid.UUID, teacherID int) (*model.ExamResults, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.TeacherID != teacherID {
		return nil, ErrExamNotFound
	}

	attempts, err := s.attempts.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []model.ExamAttempt{}
	}

	return &model.ExamResults{
		Exam:     exam,
		Attempts: attempts,
		Stats:    computeStats(attempts),
	}, nil
}

// computeStats derives aggregate statistics, zero-safe for empty input.
func computeStats(attempts []model.ExamAttempt) model.AttemptStats {
	stats := model.AttemptStats{TotalAttempts: len(attempts)}
	if len(attempts) == 0 {
		return stats
	}

	sum := 0
	for _, a := range attempts {
		if a.IsCompleted {
			stats.CompletedAttempts++
		}
		sum += a.Score
		if a.Score > stats.HighestScore {
			stats.HighestScore = a.Score
		}
	}
	stats.AverageScore = float64(sum) / float64(len(attempts))
	return stats
}
