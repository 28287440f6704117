package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/repository"
	"github.com/BerylCAtieno/documind/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type UserService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.User, error)
}

type userService struct {
	repo   repository.UserRepository
	logger *utils.Logger
}

func NewUserService(repo repository.UserRepository, logger *utils.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, utils.NewValidationError("A valid email address is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, utils.NewValidationError("Password must be at least 8 characters")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to look up user", "error", err)
		return nil, utils.NewInternalError("Failed to create account")
	}
	if existing != nil {
		return nil, utils.NewConflictError("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		return nil, utils.NewInternalError("Failed to create account")
	}

	user := &models.User{
		ID:           utils.GenerateID(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, utils.NewConflictError("An account with this email already exists")
		}
		s.logger.Error("Failed to insert user", "error", err)
		return nil, utils.NewInternalError("Failed to create account")
	}

	s.logger.Info("User signed up", "user_id", user.ID)
	return user, nil
}

func (s *userService) SignIn(ctx context.Context, req models.SignInRequest) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to look up user", "error", err)
		return nil, utils.NewInternalError("Failed to sign in")
	}
	if user == nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	return user, nil
}
