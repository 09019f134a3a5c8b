package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proctorly/proctorly-backend/internal/middleware"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/proctorly/proctorly-backend/internal/response"
	"github.com/proctorly/proctorly-backend/internal/service"
	"github.com/proctorly/proctorly-backend/internal/validator"
)

// TeacherExamHandler handles the teacher-facing exam endpoints.
type TeacherExamHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
}

// NewTeacherExamHandler creates a new TeacherExamHandler.
func NewTeacherExamHandler(examService *service.ExamService, attemptService *service.AttemptService) *TeacherExamHandler {
	return &TeacherExamHandler{
		examService:    examService,
		attemptService: attemptService,
	}
}

// CreateExam godoc
// POST /api/v1/teacher/exams
// Creates a new active exam owned by the authenticated teacher.
func (h *TeacherExamHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.TeacherID, &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, verr.Fields)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// ListExams godoc
// GET /api/v1/teacher/exams
// Lists the authenticated teacher's exams, most recently created first.
func (h *TeacherExamHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.ListByTeacher(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/teacher/exams/:exam_id
// Returns the full exam including answer keys, owner only.
func (h *TeacherExamHandler) GetExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetFull(c.Request.Context(), examID, claims.TeacherID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// GetResults godoc
// GET /api/v1/teacher/exams/:exam_id/results
// Returns the exam, all attempts, and derived statistics, owner only.
func (h *TeacherExamHandler) GetResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.attemptService.Results(c.Request.Context(), examID, claims.TeacherID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, results)
}
