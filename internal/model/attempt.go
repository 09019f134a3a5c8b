package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamAttempt is one student's submission against an exam. Attempts are
// written exactly once at submission time and never mutated.
type ExamAttempt struct {
	ID             uuid.UUID `json:"id"`
	ExamID         uuid.UUID `json:"exam_id"`
	StudentName    string    `json:"student_name"`
	StudentEmail   *string   `json:"student_email,omitempty"`
	Answers        []int     `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	WarningCount   int       `json:"warning_count"`
	IsCompleted    bool      `json:"is_completed"`
	WasTerminated  bool      `json:"was_terminated"`
}

// SubmitExamRequest is the payload for the plain HTTP submission path.
// Unanswered questions are encoded as -1.
type SubmitExamRequest struct {
	StudentName   string  `json:"student_name" binding:"required,min=1,max=255"`
	StudentEmail  *string `json:"student_email" binding:"omitempty,email"`
	Answers       []int   `json:"answers" binding:"required"`
	WarningCount  int     `json:"warning_count" binding:"min=0,max=3"`
	WasTerminated bool    `json:"was_terminated"`
}

// AttemptStats holds derived statistics over an exam's attempts.
// All values are zero-safe for exams with no attempts.
type AttemptStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	CompletedAttempts int     `json:"completed_attempts"`
	AverageScore      float64 `json:"average_score"`
	HighestScore      int     `json:"highest_score"`
}

// ExamResults bundles the full exam, its attempts, and derived stats for
// the teacher's results view.
type ExamResults struct {
	Exam     *Exam         `json:"exam"`
	Attempts []ExamAttempt `json:"attempts"`
	Stats    AttemptStats  `json:"stats"`
}
