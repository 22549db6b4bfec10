package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/fintrack-be/internal/apperr"
	"github.com/fintrack/fintrack-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	Register(name, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	var createdAt string
	row := s.db.QueryRow("SELECT id, name, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = parseTime(createdAt)
	return user, nil
}

// Register creates a new user, hashing their password. Emails are stored
// lowercase so uniqueness is case-insensitive.
func (s *UserService) Register(name, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if name == "" || email == "" {
		return models.User{}, apperr.New(apperr.KindValidation, "name and email are required")
	}
	if len(password) < 6 {
		return models.User{}, apperr.New(apperr.KindValidation, "password must be at least 6 characters")
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return models.User{}, fmt.Errorf("check existing email: %w", err)
	}
	if exists > 0 {
		return models.User{}, apperr.New(apperr.KindConflict, "email is already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, name, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, string(hashedPassword), fmtTime(user.CreatedAt),
	)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a user's credentials. Unknown emails and wrong
// passwords produce the same error so the response never reveals which.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	var createdAt string
	row := s.db.QueryRow("SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.New(apperr.KindAuth, "invalid credentials")
		}
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	user.CreatedAt = parseTime(createdAt)

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, apperr.New(apperr.KindAuth, "invalid credentials")
	}

	// Don't hand the hash back to callers
	user.PasswordHash = ""
	return user, nil
}
