package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/proctorly/proctorly-backend/internal/config"
	"github.com/proctorly/proctorly-backend/internal/database"
	"github.com/proctorly/proctorly-backend/internal/logger"
	"github.com/proctorly/proctorly-backend/internal/model"
	"github.com/proctorly/proctorly-backend/internal/repository"
	"github.com/proctorly/proctorly-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	teacherRepo := repository.NewTeacherRepository(pool)
	authService := service.NewAuthService(cfg, teacherRepo)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Teacher Account ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password (no echo)
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Create Teacher ────────────────────────────────────────────────
	teacher, err := authService.Register(ctx, &model.RegisterTeacherRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		if err == service.ErrTeacherExists {
			fmt.Println("Error: A teacher with this email already exists")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create teacher")
	}

	fmt.Printf("Teacher created successfully (id=%d, email=%s)\n", teacher.ID, teacher.Email)
}
