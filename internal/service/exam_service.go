package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/proctorly/proctorly-backend/internal/config"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ExamService owns the exam lifecycle: creation, teacher listing, full
// retrieval, and the redacted student view. The redaction invariant lives
// here — no student-facing path ever sees a correct answer.
type ExamService struct {
	exams ExamStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams: exams,
		rdb:   rdb,
		log:   log.With().Str("component", "exam_service").Logger(),
	}
}

// Create validates and persists a new exam, active from the start, and warms
// the redacted payload cache. Constraint violations return a
// *ValidationError with field details and no partial write.
func (s *ExamService) Create(ctx context.Context, teacherID int, req *model.CreateExamRequest) (*model.Exam, error) {
	if verr := validateExamDefinition(req); verr != nil {
		return nil, verr
	}

	questions := make([]model.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = model.Question{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}

	exam := &model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		TeacherID:       teacherID,
		DurationMinutes: req.DurationMinutes,
		Questions:       questions,
		IsActive:        true,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	// Best-effort: students fall back to Postgres on a cache miss.
	if err := s.warmPayloadCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Payload cache warm failed")
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int("teacher_id", teacherID).
		Int("questions", len(questions)).
		Msg("Exam created")
	return exam, nil
}

// validateExamDefinition applies the domain constraints the binding layer
// cannot express: each correct answer must index into its own options.
func validateExamDefinition(req *model.CreateExamRequest) *ValidationError {
	fields := make(map[string]string)
	if req.DurationMinutes <= 0 {
		fields["duration_minutes"] = "must be a positive number of minutes"
	}
	if len(req.Questions) == 0 {
		fields["questions"] = "at least one question is required"
	}
	for i, q := range req.Questions {
		if len(q.Options) < 2 {
			fields[fmt.Sprintf("questions[%d].options", i)] = "at least two options are required"
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			fields[fmt.Sprintf("questions[%d].correct_answer", i)] = "must be the index of one of the options"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ListByTeacher retrieves a teacher's exams, most recently created first.
func (s *ExamService) ListByTeacher(ctx context.Context, teacherID int) ([]model.Exam, error) {
	exams, err := s.exams.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// GetFull retrieves the complete exam including answer keys. Only the owning
// teacher may read it; non-owners get ErrExamNotFound so exam existence is
// not leaked to holders of a guessed id.
func (s *ExamService) GetFull(ctx context.Context, examID uuid.UUID, teacherID int) (*model.Exam, error) {
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
	return exam, nil
}

// GetForStudent retrieves the redacted exam for the student view. It serves
// from the Redis payload cache when possible and falls back to Postgres,
// re-warming the cache. Missing or deactivated exams yield ErrExamNotFound.
func (s *ExamService) GetForStudent(ctx context.Context, examID uuid.UUID) (*model.StudentExam, error) {
	key := config.CacheKey.ExamPayloadKey(examID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		payload := &model.StudentExam{}
		if err := json.Unmarshal(data, payload); err == nil {
			return payload, nil
		}
		s.log.Warn().Str("exam_id", examID.String()).Msg("Corrupt payload cache entry, falling back")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Payload cache read failed, falling back")
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrExamNotFound
	}

	if err := s.warmPayloadCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Payload cache rewarm failed")
	}
	return exam.Redact(), nil
}

// warmPayloadCache stores the redacted exam payload in Redis. Only the
// redacted form ever enters the cache, so cache reads cannot bypass
// redaction. Deactivation is not exposed in this service, so entries cannot
// go stale in-process.
func (s *ExamService) warmPayloadCache(ctx context.Context, exam *model.Exam) error {
	payload, err := json.Marshal(exam.Redact())
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	key := config.CacheKey.ExamPayloadKey(exam.ID.String())
	if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("cache payload: %w", err)
	}
	return nil
}
