package accounts

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"todo-service/models"
	"todo-service/store"

	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password, in characters, accepted at registration
const MinPasswordLength = 8

// maxBcryptInput is the number of password bytes bcrypt uses; longer input is rejected by
// GenerateFromPassword
const maxBcryptInput = 72

// Messages shown on the register and login pages
const (
	MsgPasswordTooShort = "Password length must be greater than 7!"
	MsgPasswordMismatch = "Passwords don't match!"
	MsgEmailExists      = "Email already exists!"
	MsgRegistered       = "You have successfully registered."
	MsgNotRegistered    = "Email is not registered"
	MsgWrongPassword    = "Wrong password"
	MsgServerError      = "Something went wrong, please try again"
)

// CredentialStore is the subset of the user store the account workflows need
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
}

// Service implements registration and login
type Service struct {
	users CredentialStore
	cost  int
}

// NewService creates an account service hashing passwords with the given bcrypt cost
func NewService(users CredentialStore, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: cost}
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// bcryptInput returns the prefix of password that is hashed and verified.
// Hashing and comparing the same prefix keeps passwords over 72 bytes usable.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptInput {
		b = b[:maxBcryptInput]
	}
	return b
}

// Register validates the form and creates the user.
// Checks run in order and stop at the first failure; nothing is written unless all pass.
func (s *Service) Register(ctx context.Context, email, password, confirmation string) (*models.User, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, errs.NewValidationError(MsgPasswordTooShort)
	}
	if password != confirmation {
		return nil, errs.NewValidationError(MsgPasswordMismatch)
	}

	email = NormalizeEmail(email)
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, errs.NewValidationError(MsgEmailExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Error("Failed to look up email during registration", zap.String("email", email), zap.Error(err))
		return nil, errs.NewInternalServerError(MsgServerError)
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.cost)
	if err != nil {
		logger.Error("Password hashing failed", zap.Error(err))
		return nil, errs.NewInternalServerError(MsgServerError)
	}

	user, err := s.users.Create(ctx, email, string(hash))
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, errs.NewValidationError(MsgEmailExists)
	}
	if err != nil {
		logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, errs.NewInternalServerError(MsgServerError)
	}

	logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies the credentials and returns the user.
// A failed lookup of any kind reports the email as not registered.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error("Failed to look up email during login", zap.String("email", email), zap.Error(err))
		}
		return nil, errs.NewAuthenticationError(MsgNotRegistered)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), bcryptInput(password)); err != nil {
		logger.Info("Invalid password", zap.String("user_id", user.ID))
		return nil, errs.NewAuthenticationError(MsgWrongPassword)
	}

	return user, nil
}
