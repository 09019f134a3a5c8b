package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/proctorly/proctorly-backend/internal/model"
)

// In-memory store fakes. Like the pgx repositories, they report a missing
// row as pgx.ErrNoRows and populate generated columns on Create.

type fakeTeacherStore struct {
	teachers map[string]*model.Teacher
	nextID   int
	err      error
}

func newFakeTeacherStore() *fakeTeacherStore {
	return &fakeTeacherStore{teachers: make(map[string]*model.Teacher)}
}

func (f *fakeTeacherStore) GetByEmail(_ context.Context, email string) (*model.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.teachers[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeacherStore) GetByID(_ context.Context, id int) (*model.Teacher, error) {
	for _, t := range f.teachers {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeacherStore) Create(_ context.Context, t *model.Teacher) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	cp := *t
	f.teachers[t.Email] = &cp
	return nil
}

type fakeExamStore struct {
	exams     map[uuid.UUID]*model.Exam
	createErr error
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: make(map[uuid.UUID]*model.Exam)}
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExamStore) ListByTeacher(_ context.Context, teacherID int) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range f.exams {
		if e.TeacherID == teacherID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeExamStore) Create(_ context.Context, e *model.Exam) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	cp := *e
	f.exams[e.ID] = &cp
	return nil
}

// add seeds an exam directly, bypassing Create.
func (f *fakeExamStore) add(e model.Exam) model.Exam {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	f.exams[e.ID] = &e
	return e
}

type fakeAttemptStore struct {
	attempts  []model.ExamAttempt
	createErr error
}

func (f *fakeAttemptStore) Create(_ context.Context, a *model.ExamAttempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = uuid.New()
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeAttemptStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, a := range f.attempts {
		if a.ExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}
