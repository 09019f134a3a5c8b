package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents a teacher-authored multiple-choice exam. Questions are
// embedded in the exam row as JSONB; they are immutable after creation.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	TeacherID       int        `json:"teacher_id"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Question is a single multiple-choice question embedded in an exam.
// CorrectAnswer is the zero-based index into Options.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// StudentExam is the redacted exam shape exposed to students. It must never
// carry correct answers; every student-facing path goes through this type.
type StudentExam struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DurationMinutes int               `json:"duration_minutes"`
	Questions       []StudentQuestion `json:"questions"`
}

// StudentQuestion is a question with the correct answer stripped.
type StudentQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Redact converts a full exam into its student-facing form.
func (e *Exam) Redact() *StudentExam {
	qs := make([]StudentQuestion, len(e.Questions))
	for i, q := range e.Questions {
		qs[i] = StudentQuestion{Question: q.Question, Options: q.Options}
	}
	return &StudentExam{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		DurationMinutes: e.DurationMinutes,
		Questions:       qs,
	}
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string                  `json:"title" binding:"required,min=3,max=255"`
	Description     string                  `json:"description" binding:"max=2000"`
	DurationMinutes int                     `json:"duration_minutes" binding:"required,min=1,max=480"`
	Questions       []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// CreateQuestionRequest is one question in a CreateExamRequest.
// The correct-answer range check against Options happens in the service.
type CreateQuestionRequest struct {
	Question      string   `json:"question" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0"`
}
