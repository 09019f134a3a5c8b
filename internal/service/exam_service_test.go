package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// deadRedis returns a client pointed at a closed port: every cache operation
// fails fast, exercising the Postgres fallback paths.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func newTestExamService(exams ExamStore) *ExamService {
	return NewExamService(exams, deadRedis(), zerolog.Nop())
}

func validCreateRequest() *model.CreateExamRequest {
	return &model.CreateExamRequest{
		Title:           "Geography quiz",
		Description:     "Capitals",
		DurationMinutes: 30,
		Questions: []model.CreateQuestionRequest{
			{Question: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectAnswer: 0},
			{Question: "Capital of Japan?", Options: []string{"Osaka", "Tokyo", "Kyoto"}, CorrectAnswer: 1},
		},
	}
}

func TestExamCreate(t *testing.T) {
	store := newFakeExamStore()
	svc := newTestExamService(store)

	exam, err := svc.Create(context.Background(), 7, validCreateRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if exam.ID == uuid.Nil {
		t.Fatal("exam id not assigned")
	}
	if !exam.IsActive {
		t.Fatal("new exam not active")
	}
	if exam.TeacherID != 7 {
		t.Fatalf("teacher id = %d, want 7", exam.TeacherID)
	}
	if len(exam.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(exam.Questions))
	}
}

func TestExamCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.CreateExamRequest)
		field  string
	}{
		{
			name:   "zero duration",
			mutate: func(r *model.CreateExamRequest) { r.DurationMinutes = 0 },
			field:  "duration_minutes",
		},
		{
			name:   "negative duration",
			mutate: func(r *model.CreateExamRequest) { r.DurationMinutes = -5 },
			field:  "duration_minutes",
		},
		{
			name:   "no questions",
			mutate: func(r *model.CreateExamRequest) { r.Questions = nil },
			field:  "questions",
		},
		{
			name: "single option",
			mutate: func(r *model.CreateExamRequest) {
				r.Questions[1].Options = []string{"Tokyo"}
			},
			field: "questions[1].options",
		},
		{
			name: "correct answer out of range",
			mutate: func(r *model.CreateExamRequest) {
				r.Questions[0].CorrectAnswer = 2
			},
			field: "questions[0].correct_answer",
		},
		{
			name: "negative correct answer",
			mutate: func(r *model.CreateExamRequest) {
				r.Questions[0].CorrectAnswer = -1
			},
			field: "questions[0].correct_answer",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeExamStore()
			svc := newTestExamService(store)
			req := validCreateRequest()
			tc.mutate(req)

			_, err := svc.Create(context.Background(), 1, req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("fields = %v, want entry for %q", verr.Fields, tc.field)
			}
			if len(store.exams) != 0 {
				t.Fatal("rejected exam was persisted")
			}
		})
	}
}

func TestExamListByTeacherOrdering(t *testing.T) {
	store := newFakeExamStore()
	svc := newTestExamService(store)
	base := time.Now()

	store.add(model.Exam{Title: "first", TeacherID: 1, CreatedAt: base})
	store.add(model.Exam{Title: "second", TeacherID: 1, CreatedAt: base.Add(time.Minute)})
	store.add(model.Exam{Title: "other teacher", TeacherID: 2, CreatedAt: base.Add(time.Hour)})

	exams, err := svc.ListByTeacher(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByTeacher: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("len = %d, want 2", len(exams))
	}
	if exams[0].Title != "second" || exams[1].Title != "first" {
		t.Fatalf("order = [%s, %s], want newest first", exams[0].Title, exams[1].Title)
	}
}

func TestExamListByTeacherEmpty(t *testing.T) {
	svc := newTestExamService(newFakeExamStore())

	exams, err := svc.ListByTeacher(context.Background(), 99)
	if err != nil {
		t.Fatalf("ListByTeacher: %v", err)
	}
	if exams == nil {
		t.Fatal("exams is nil, want empty slice")
	}
	if len(exams) != 0 {
		t.Fatalf("len = %d, want 0", len(exams))
	}
}

func TestExamGetFullOwnership(t *testing.T) {
	store := newFakeExamStore()
	svc := newTestExamService(store)
	exam := store.add(model.Exam{Title: "owned", TeacherID: 1, IsActive: true})

	if _, err := svc.GetFull(context.Background(), exam.ID, 1); err != nil {
		t.Fatalf("owner GetFull: %v", err)
	}
	if _, err := svc.GetFull(context.Background(), exam.ID, 2); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("non-owner err = %v, want ErrExamNotFound", err)
	}
	if _, err := svc.GetFull(context.Background(), uuid.New(), 1); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("missing exam err = %v, want ErrExamNotFound", err)
	}
}

func TestExamGetForStudentRedaction(t *testing.T) {
	store := newFakeExamStore()
	svc := newTestExamService(store)
	exam := store.add(model.Exam{
		Title:           "quiz",
		TeacherID:       1,
		DurationMinutes: 15,
		IsActive:        true,
		Questions: []model.Question{
			{Question: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
			{Question: "Q2", Options: []string{"x", "y", "z"}, CorrectAnswer: 2},
		},
	})

	student, err := svc.GetForStudent(context.Background(), exam.ID)
	if err != nil {
		t.Fatalf("GetForStudent: %v", err)
	}
	if len(student.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(student.Questions))
	}

	raw, err := json.Marshal(student)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "correct_answer") {
		t.Fatalf("student payload leaks correct answers: %s", raw)
	}
}

func TestExamGetForStudentInactive(t *testing.T) {
	store := newFakeExamStore()
	svc := newTestExamService(store)
	exam := store.add(model.Exam{Title: "closed", TeacherID: 1, IsActive: false})

	if _, err := svc.GetForStudent(context.Background(), exam.ID); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("inactive err = %v, want ErrExamNotFound", err)
	}
}

func TestExamGetForStudentMissing(t *testing.T) {
	svc := newTestExamService(newFakeExamStore())

	if _, err := svc.GetForStudent(context.Background(), uuid.New()); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("missing err = %v, want ErrExamNotFound", err)
	}
}
