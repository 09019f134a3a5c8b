package model

import "time"

// Teacher represents an exam-authoring account.
// PasswordHash is a bcrypt hash; plaintext credentials are never stored.
type Teacher struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TeacherProfile is the public view returned after login/registration.
type TeacherProfile struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile strips credential data from a Teacher.
func (t *Teacher) Profile() TeacherProfile {
	return TeacherProfile{ID: t.ID, Email: t.Email, Name: t.Name}
}

// RegisterTeacherRequest is the payload for creating a teacher account.
type RegisterTeacherRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the payload for teacher login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
