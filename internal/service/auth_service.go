package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/proctorly/proctorly-backend/internal/config"
	"github.com/proctorly/proctorly-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with the authenticated teacher's id.
type Claims struct {
	jwt.RegisteredClaims
	TeacherID int `json:"teacher_id"`
}

// AuthService handles teacher registration, login, and JWT issuance.
// Passwords are stored as bcrypt hashes only.
type AuthService struct {
	cfg      *config.Config
	teachers TeacherStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, teachers TeacherStore) *AuthService {
	return &AuthService{cfg: cfg, teachers: teachers}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a new teacher account. The email is checked for prior
// registration before any write; ErrTeacherExists is returned on conflict.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterTeacherRequest) (*model.Teacher, error) {
	_, err := s.teachers.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrTeacherExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup teacher: %w", err)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	teacher := &model.Teacher{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}
	return teacher, nil
}

// Login verifies credentials and returns the teacher on success.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Teacher, error) {
	teacher, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup teacher: %w", err)
	}
	if err := s.CheckPassword(teacher.PasswordHash, password); err != nil {
		return nil, err
	}
	return teacher, nil
}

// GenerateToken creates a signed JWT for a teacher.
func (s *AuthService) GenerateToken(teacherID int) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(teacherID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TeacherID: teacherID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
