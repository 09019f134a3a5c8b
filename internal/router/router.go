package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/proctorly/proctorly-backend/internal/config"
	"github.com/proctorly/proctorly-backend/internal/handler"
	"github.com/proctorly/proctorly-backend/internal/middleware"
	"github.com/proctorly/proctorly-backend/internal/response"
	"github.com/proctorly/proctorly-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	TeacherExam *handler.TeacherExamHandler
	StudentExam *handler.StudentExamHandler
	ProctorWS   *handler.ProctorWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/teacher/register", handlers.Auth.Register)
		auth.POST("/teacher/login", handlers.Auth.Login)
	}

	// ─── 2. Public Group (Shareable Exam Link) ─────────────────────────
	// Holding the opaque exam id is the entire student access control.
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/exams/:exam_id", handlers.StudentExam.GetExam)
		publicAPI.POST("/exams/:exam_id/submit", handlers.StudentExam.SubmitExam)
	}

	// ─── 3. WebSocket Group (Proctored Sessions) ───────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exams/:exam_id/proctor", handlers.ProctorWS.Stream)
	}

	// ─── 4. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/exams", handlers.TeacherExam.ListExams)
		teacherAPI.POST("/exams", handlers.TeacherExam.CreateExam)
		teacherAPI.GET("/exams/:exam_id", handlers.TeacherExam.GetExam)
		teacherAPI.GET("/exams/:exam_id/results", handlers.TeacherExam.GetResults)
	}

	return router
}
