package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/rs/zerolog"
)

func seedExam(store *fakeExamStore, teacherID int) model.Exam {
	return store.add(model.Exam{
		Title:           "quiz",
		TeacherID:       teacherID,
		DurationMinutes: 30,
		IsActive:        true,
		Questions: []model.Question{
			{Question: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
			{Question: "Q2", Options: []string{"x", "y"}, CorrectAnswer: 0},
		},
	})
}

func TestSubmitScoresAndPersists(t *testing.T) {
	exams := newFakeExamStore()
	attempts := &fakeAttemptStore{}
	svc := NewAttemptService(exams, attempts, zerolog.Nop())
	exam := seedExam(exams, 1)

	attempt, err := svc.Submit(context.Background(), SubmitParams{
		ExamID:      exam.ID,
		StudentName: "Ada",
		Answers:     []int{1, 0},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if attempt.Score != 2 {
		t.Fatalf("score = %d, want 2", attempt.Score)
	}
	if attempt.TotalQuestions != 2 {
		t.Fatalf("total = %d, want 2", attempt.TotalQuestions)
	}
	if !attempt.IsCompleted || attempt.WasTerminated {
		t.Fatalf("completed=%v terminated=%v, want completed", attempt.IsCompleted, attempt.WasTerminated)
	}
	if len(attempts.attempts) != 1 {
		t.Fatalf("persisted %d attempts, want 1", len(attempts.attempts))
	}
}

func TestSubmitPartialScore(t *testing.T) {
	exams := newFakeExamStore()
	attempts := &fakeAttemptStore{}
	svc := NewAttemptService(exams, attempts, zerolog.Nop())
	exam := seedExam(exams, 1)

	attempt, err := svc.Submit(context.Background(), SubmitParams{
		ExamID:      exam.ID,
		StudentName: "Ada",
		Answers:     []int{1, 1},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if attempt.Score != 1 {
		t.Fatalf("score = %d, want 1", attempt.Score)
	}
}

func TestSubmitTerminated(t *testing.T) {
	exams := newFakeExamStore()
	attempts := &fakeAttemptStore{}
	svc := NewAttemptService(exams, attempts, zerolog.Nop())
	exam := seedExam(exams, 1)

	attempt, err := svc.Submit(context.Background(), SubmitParams{
		ExamID:        exam.ID,
		StudentName:   "Ada",
		Answers:       []int{1, -1},
		WarningCount:  3,
		WasTerminated: true,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if attempt.IsCompleted {
		t.Fatal("terminated attempt marked completed")
	}
	if !attempt.WasTerminated || attempt.WarningCount != 3 {
		t.Fatalf("terminated=%v warnings=%d, want true/3", attempt.WasTerminated, attempt.WarningCount)
	}
	// Unanswered markers score zero but the attempt still records them.
	if attempt.Score != 1 {
		t.Fatalf("score = %d, want 1", attempt.Score)
	}
}

func TestSubmitMissingExam(t *testing.T) {
	svc := NewAttemptService(newFakeExamStore(), &fakeAttemptStore{}, zerolog.Nop())

	_, err := svc.Submit(context.Background(), SubmitParams{ExamID: uuid.New(), StudentName: "Ada"})
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}

func TestSubmitNilAnswers(t *testing.T) {
	exams := newFakeExamStore()
	attempts := &fakeAttemptStore{}
	svc := NewAttemptService(exams, attempts, zerolog.Nop())
	exam := seedExam(exams, 1)

	attempt, err := svc.Submit(context.Background(), SubmitParams{ExamID: exam.ID, StudentName: "Ada"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if attempt.Answers == nil {
		t.Fatal("answers is nil, want empty slice")
	}
	if attempt.Score != 0 {
		t.Fatalf("score = %d, want 0", attempt.Score)
	}
}

func TestSubmitStartTimeApproximation(t *testing.T) {
	exams := newFakeExamStore()
	svc := NewAttemptService(exams, &fakeAttemptStore{}, zerolog.Nop())
	exam := seedExam(exams, 1)

	attempt, err := svc.Submit(context.Background(), SubmitParams{ExamID: exam.ID, StudentName: "Ada"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	gap := attempt.FinishedAt.Sub(attempt.StartedAt)
	want := time.Duration(exam.DurationMinutes) * time.Minute
	if gap != want {
		t.Fatalf("finished-started = %v, want exactly %v", gap, want)
	}
}

func TestSubmitTrueStartTime(t *testing.T) {
	exams := newFakeExamStore()
	svc := NewAttemptService(exams, &fakeAttemptStore{}, zerolog.Nop())
	exam := seedExam(exams, 1)

	started := time.Now().Add(-5 * time.Minute)
	attempt, err := svc.Submit(context.Background(), SubmitParams{
		ExamID:      exam.ID,
		StudentName: "Ada",
		StartedAt:   &started,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !attempt.StartedAt.Equal(started) {
		t.Fatalf("startedAt = %v, want %v", attempt.StartedAt, started)
	}
}

func TestResults(t *testing.T) {
	exams := newFakeExamStore()
	attempts := &fakeAttemptStore{}
	svc := NewAttemptService(exams, attempts, zerolog.Nop())
	exam := seedExam(exams, 1)

	attempts.attempts = []model.ExamAttempt{
		{ID: uuid.New(), ExamID: exam.ID, Score: 2, IsCompleted: true},
		{ID: uuid.New(), ExamID: exam.ID, Score: 1, IsCompleted: true},
		{ID: uuid.New(), ExamID: exam.ID, Score: 0, WasTerminated: true},
	}

	res, err := svc.Results(context.Background(), exam.ID, 1)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if res.Stats.TotalAttempts != 3 {
		t.Fatalf("total = %d, want 3", res.Stats.TotalAttempts)
	}
	if res.Stats.CompletedAttempts != 2 {
		t.Fatalf("completed = %d, want 2", res.Stats.CompletedAttempts)
	}
	if res.Stats.HighestScore != 2 {
		t.Fatalf("highest = %d, want 2", res.Stats.HighestScore)
	}
	if math.Abs(res.Stats.AverageScore-1.0) > 1e-9 {
		t.Fatalf("average = %f, want 1.0", res.Stats.AverageScore)
	}
}

func TestResultsEmpty(t *testing.T) {
	exams := newFakeExamStore()
	svc := NewAttemptService(exams, &fakeAttemptStore{}, zerolog.Nop())
	exam := seedExam(exams, 1)

	res, err := svc.Results(context.Background(), exam.ID, 1)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if res.Stats.TotalAttempts != 0 || res.Stats.AverageScore != 0 || res.Stats.HighestScore != 0 {
		t.Fatalf("stats = %+v, want all zero", res.Stats)
	}
	if res.Attempts == nil {
		t.Fatal("attempts is nil, want empty slice")
	}
}

func TestResultsOwnership(t *testing.T) {
	exams := newFakeExamStore()
	svc := NewAttemptService(exams, &fakeAttemptStore{}, zerolog.Nop())
	exam := seedExam(exams, 1)

	if _, err := svc.Results(context.Background(), exam.ID, 2); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("non-owner err = %v, want ErrExamNotFound", err)
	}
	if _, err := svc.Results(context.Background(), uuid.New(), 1); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("missing err = %v, want ErrExamNotFound", err)
	}
}
