package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/proctorly/proctorly-backend/internal/config"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/proctorly/proctorly-backend/internal/proctor"
	"github.com/proctorly/proctorly-backend/internal/service"
	ws "github.com/proctorly/proctorly-backend/internal/websocket"
	"github.com/proctorly/proctorly-backend/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ProctorWSHandler runs proctored exam sessions over WebSocket. The client
// streams face-count samples and answer selections; the server owns the
// violation state machine, the countdown, and the single submission.
type ProctorWSHandler struct {
	cfg            *config.Config
	rdb            *redis.Client
	examService    *service.ExamService
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewProctorWSHandler creates a new ProctorWSHandler.
func NewProctorWSHandler(
	cfg *config.Config,
	rdb *redis.Client,
	examService *service.ExamService,
	attemptService *service.AttemptService,
	log zerolog.Logger,
) *ProctorWSHandler {
	return &ProctorWSHandler{
		cfg:            cfg,
		rdb:            rdb,
		examService:    examService,
		attemptService: attemptService,
		log:            log.With().Str("component", "proctor_ws").Logger(),
		upgrader:       buildUpgrader(cfg.AllowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/exams/:exam_id/proctor
// Lifecycle: the client sends "start" with identity and camera consent, then
// streams "sample" and "answer" messages until a terminal transition —
// manual "submit", countdown expiry, or the third warning.
func (h *ProctorWSHandler) Stream(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "exam not available"})
		return
	}

	// The redacted read doubles as the availability check: missing or
	// deactivated exams never reach the session stage.
	exam, err := h.examService.GetForStudent(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "exam not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(rawConn)
	defer rawConn.Close()

	wsLog := h.log.With().Str("exam_id", examID.String()).Logger()
	wsLog.Info().Msg("Student connected")

	var (
		session  *proctor.Session
		finished atomic.Bool
	)
	// Teardown on every exit path: stops the countdown so a late expiry
	// cannot submit after the connection is gone.
	defer func() {
		if session != nil {
			session.Close()
		}
	}()

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionStart:
			if session != nil {
				conn.WriteError("session already started")
				continue
			}
			session = h.startSession(conn, wsLog, exam, &msg, &finished)

		case ws.ActionSample:
			if session == nil {
				conn.WriteError("session not started")
				continue
			}
			h.handleSample(conn, wsLog, session, exam.ID, msg.FaceCount)

		case ws.ActionAnswer:
			if session == nil {
				conn.WriteError("session not started")
				continue
			}
			session.Answer(msg.Question, msg.Option)

		case ws.ActionSubmit:
			if session == nil {
				conn.WriteError("session not started")
				continue
			}
			session.Submit()

		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}

		if finished.Load() {
			return
		}
	}
}

// startSession validates the start message and brings up the session with
// its finish callback. Camera consent is a hard precondition of proctored
// delivery; without it the exam does not start.
func (h *ProctorWSHandler) startSession(
	conn *ws.Conn,
	wsLog zerolog.Logger,
	exam *model.StudentExam,
	msg *ws.RequestPayload,
	finished *atomic.Bool,
) *proctor.Session {
	if strings.TrimSpace(msg.StudentName) == "" {
		conn.WriteError("student_name is required")
		return nil
	}
	if !msg.CameraGranted {
		conn.WriteError("camera access is required for this exam")
		return nil
	}

	duration := time.Duration(exam.DurationMinutes) * time.Minute

	session := proctor.NewSession(proctor.SessionConfig{
		ExamID:        exam.ID,
		StudentName:   msg.StudentName,
		StudentEmail:  msg.StudentEmail,
		QuestionCount: len(exam.Questions),
		Duration:      duration,
		Monitor: proctor.Config{
			ViolationWindow: h.cfg.ProctorViolationWindow,
			MaxWarnings:     h.cfg.ProctorMaxWarnings,
		},
		OnFinish: func(reason proctor.FinishReason, snap proctor.Snapshot) {
			finished.Store(true)
			h.finishSession(conn, wsLog, reason, snap)
		},
	})
	session.Start(time.Now())

	conn.WriteTyped(ws.StartedResponse{
		Event:            ws.EventStarted,
		SessionID:        session.ID().String(),
		DurationSeconds:  int(duration.Seconds()),
		SampleIntervalMS: int(h.cfg.ProctorSampleInterval.Milliseconds()),
		MaxWarnings:      h.cfg.ProctorMaxWarnings,
	})

	wsLog.Info().
		Str("session_id", session.ID().String()).
		Str("student", msg.StudentName).
		Msg("Session started")
	return session
}

// handleSample feeds one face-count observation to the session and relays
// any raised violation to the client and to the persistence queue.
func (h *ProctorWSHandler) handleSample(conn *ws.Conn, wsLog zerolog.Logger, session *proctor.Session, examID uuid.UUID, faceCount int) {
	v := session.Sample(faceCount, time.Now())
	if v == nil {
		return
	}

	// Audit trail is best-effort; the session must not notice queue trouble.
	if err := worker.Enqueue(context.Background(), h.rdb, &worker.ViolationPayload{
		ExamID:      examID.String(),
		SessionID:   session.ID().String(),
		StudentName: session.StudentName(),
		Kind:        string(v.Kind),
		FaceCount:   v.FaceCount,
		Timestamp:   v.At.Unix(),
	}); err != nil {
		wsLog.Warn().Err(err).Msg("Violation enqueue failed")
	}

	// The terminal violation is announced by the finish callback; the
	// warning notification still goes out so the client shows 3/3.
	conn.WriteTyped(ws.WarningResponse{
		Event:       ws.EventWarning,
		Kind:        string(v.Kind),
		Warning:     v.Warning,
		MaxWarnings: h.cfg.ProctorMaxWarnings,
	})
}

// finishSession persists the attempt and notifies the client. Runs on
// whichever goroutine won the terminal race (read loop or countdown timer);
// the wrapped connection serializes the writes.
func (h *ProctorWSHandler) finishSession(conn *ws.Conn, wsLog zerolog.Logger, reason proctor.FinishReason, snap proctor.Snapshot) {
	startedAt := snap.StartedAt

	attempt, err := h.attemptService.Submit(context.Background(), service.SubmitParams{
		ExamID:        snap.ExamID,
		StudentName:   snap.StudentName,
		StudentEmail:  snap.StudentEmail,
		Answers:       snap.Answers,
		WarningCount:  snap.WarningCount,
		WasTerminated: snap.WasTerminated,
		StartedAt:     &startedAt,
	})
	if err != nil {
		wsLog.Error().Err(err).Str("session_id", snap.SessionID.String()).Msg("Submission failed")
		conn.WriteError("submission failed")
		return
	}

	if snap.WasTerminated {
		conn.WriteTyped(ws.TerminatedResponse{
			Event:        ws.EventTerminated,
			WarningCount: snap.WarningCount,
		})
	}
	conn.WriteTyped(ws.SubmittedResponse{
		Event:         ws.EventSubmitted,
		Reason:        string(reason),
		WasTerminated: snap.WasTerminated,
	})

	wsLog.Info().
		Str("session_id", snap.SessionID.String()).
		Str("attempt_id", attempt.ID.String()).
		Str("reason", string(reason)).
		Msg("Session finished")
}
