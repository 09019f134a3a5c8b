package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/proctorly/proctorly-backend/internal/response"
	"github.com/proctorly/proctorly-backend/internal/service"
	"github.com/proctorly/proctorly-backend/internal/validator"
)

// StudentExamHandler handles the student-facing endpoints reached through a
// shared exam link. Holding the opaque exam id is the entire access control.
type StudentExamHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
}

// NewStudentExamHandler creates a new StudentExamHandler.
func NewStudentExamHandler(examService *service.ExamService, attemptService *service.AttemptService) *StudentExamHandler {
	return &StudentExamHandler{
		examService:    examService,
		attemptService: attemptService,
	}
}

// GetExam godoc
// GET /api/v1/public/exams/:exam_id
// Returns the redacted exam. Missing and deactivated exams are both a plain
// not-found — the link is simply invalid from the student's point of view.
func (h *StudentExamHandler) GetExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
		return
	}

	exam, err := h.examService.GetForStudent(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// SubmitExam godoc
// POST /api/v1/public/exams/:exam_id/submit
// The plain submission path for clients that ran proctoring locally. The
// proctored WebSocket stream submits server-side instead.
func (h *StudentExamHandler) SubmitExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), service.SubmitParams{
		ExamID:        examID,
		StudentName:   req.StudentName,
		StudentEmail:  req.StudentEmail,
		Answers:       req.Answers,
		WarningCount:  req.WarningCount,
		WasTerminated: req.WasTerminated,
	})
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrSubmissionFailure)
		return
	}

	// The student sees completion status, not the score — results are
	// reviewed and shared by the teacher.
	response.Success(c, http.StatusCreated, gin.H{
		"attempt_id":     attempt.ID,
		"is_completed":   attempt.IsCompleted,
		"was_terminated": attempt.WasTerminated,
	})
}
