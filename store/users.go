package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-service/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserStore persists user credentials
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail returns the user registered with email, or ErrNotFound
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT id, email, password, created_at FROM users WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns the user with the given id, or ErrNotFound
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT id, email, password, created_at FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a user with an already hashed password.
// The UNIQUE constraint on email makes a concurrent duplicate fail with ErrDuplicateEmail.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.NamedExecContext(ctx,
		"INSERT INTO users (id, email, password, created_at) VALUES (:id, :email, :password, :created_at)", user)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
