// Package users implements signup and login against the identity store.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"photoshare/internal/auth"
	"photoshare/internal/database"
	"photoshare/internal/models"
)

var (
	ErrValidation     = errors.New("invalid user data")
	ErrCredential     = errors.New("password or username is incorrect")
	ErrDuplicateEmail = errors.New("a user with the given email is already registered")
)

// ValidationError carries the message shown back on the signup form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type Repository interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (*models.User, error)
	GetUsersByUsername(ctx context.Context, username string) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type SignupInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, database.CreateUserParams{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: %w", ErrCredential, ErrDuplicateEmail)
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrCredential
	}

	candidates, err := s.repo.GetUsersByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	// Usernames are shared, so the password picks the account.
	for _, user := range candidates {
		if auth.CheckPasswordHash(password, user.PasswordHash) {
			return user, nil
		}
	}

	return nil, ErrCredential
}

// Lookup resolves a session's user id. A nil user means the account is gone.
func (s *Service) Lookup(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// Message returns the text shown to the user for a Register or
// Authenticate failure.
func Message(err error) string {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.Is(err, ErrDuplicateEmail):
		return "A user with the given email is already registered"
	case errors.Is(err, ErrCredential):
		return "Password or username is incorrect"
	default:
		return "Something went wrong"
	}
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: "All fields are required"}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Message: "All fields are required"}
	case "email":
		return &ValidationError{Message: "Email address is invalid"}
	case "min":
		return &ValidationError{Message: fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())}
	case "max":
		return &ValidationError{Message: fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())}
	default:
		return &ValidationError{Message: fmt.Sprintf("%s is invalid", fe.Field())}
	}
}
