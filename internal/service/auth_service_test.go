package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/proctorly/proctorly-backend/internal/config"
	"github.com/proctorly/proctorly-backend/internal/model"
)

func newTestAuthService(teachers TeacherStore) *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // minimum cost, keeps the suite fast
	}, teachers)
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	teacher, err := svc.Register(context.Background(), &model.RegisterTeacherRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if teacher.ID == 0 {
		t.Fatal("teacher id not assigned")
	}
	if teacher.PasswordHash == "correct horse" {
		t.Fatal("password stored in plaintext")
	}

	logged, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != teacher.ID {
		t.Fatalf("logged in as id %d, want %d", logged.ID, teacher.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	req := &model.RegisterTeacherRequest{Email: "ada@example.com", Name: "Ada", Password: "pw123456"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrTeacherExists) {
		t.Fatalf("second Register err = %v, want ErrTeacherExists", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	if _, err := svc.Register(context.Background(), &model.RegisterTeacherRequest{
		Email: "ada@example.com", Name: "Ada", Password: "pw123456",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	// A missing account is indistinguishable from a wrong password.
	if _, err := svc.Login(context.Background(), "nobody@example.com", "pw123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("missing account err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(newFakeTeacherStore())

	token, err := svc.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TeacherID != 42 {
		t.Fatalf("teacher id = %d, want 42", claims.TeacherID)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := newTestAuthService(newFakeTeacherStore())
	verifier := NewAuthService(&config.Config{
		JWTSecret: "different-secret",
		JWTExpiry: time.Hour,
	}, newFakeTeacherStore())

	token, err := issuer.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newFakeTeacherStore())
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}
