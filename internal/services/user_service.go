package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muhammedsuhaib/raheel-be/internal/auth"
	"github.com/muhammedsuhaib/raheel-be/internal/database"
	"github.com/muhammedsuhaib/raheel-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetByID(id string) (models.User, error)
	GetByEmail(email string) (models.User, error)
	Create(email, name, password string) (models.User, error)
	Update(id string, patch models.UserPatch) (models.User, error)
	Delete(id string) error
	Authenticate(email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// dummyHash keeps the unknown-email path of Authenticate as expensive as the
// wrong-password path.
var dummyHash = func() string {
	h, _ := auth.HashPassword("timing-equalizer")
	return h
}()

const userColumns = "id, email, name, password_hash, created_at, updated_at"

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetByEmail retrieves a single user by their email, exact match.
func (s *UserService) GetByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Create inserts a new user, hashing their password. The storage layer's
// UNIQUE constraint is the final arbiter under concurrent registrations for
// the same email; its rejection surfaces as ErrEmailTaken.
func (s *UserService) Create(email, name, password string) (models.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, email, name, password_hash, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// Update applies a patch to the mutable profile fields, name and email, and
// refreshes updated_at. A single statement applies each set field and leaves
// nil fields untouched, so a concurrently deleted row surfaces as
// ErrNotFound instead of a silent zero-row update.
func (s *UserService) Update(id string, patch models.UserPatch) (models.User, error) {
	res, err := s.db.Exec(
		"UPDATE users SET name = COALESCE(?, name), email = COALESCE(?, email), updated_at = ? WHERE id = ?",
		patch.Name, patch.Email, time.Now().UTC(), id,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, ErrNotFound
	}
	return s.GetByID(id)
}

// Delete removes a user from the database. Returns ErrNotFound if no row
// existed.
func (s *UserService) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate verifies a user's credentials. Unknown email and wrong
// password both yield ErrInvalidCredentials, with a dummy hash comparison on
// the unknown-email path so the two failures take the same time.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.CheckPassword(password, dummyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
