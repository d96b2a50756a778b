package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/workoutcompanion/internal/telemetry/metrics"
	"github.com/2beens/workoutcompanion/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type usersRepo interface {
	Create(ctx context.Context, user User) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type Service struct {
	repo           usersRepo
	metricsManager *metrics.Manager
	// injectable for tests, bcrypt is slow on purpose
	HashPasswordFunc  func(password string) (string, error)
	CheckPasswordFunc func(password, hash string) bool
}

func NewService(repo usersRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:              repo,
		metricsManager:    metricsManager,
		HashPasswordFunc:  pkg.HashPassword,
		CheckPasswordFunc: pkg.CheckPasswordHash,
	}
}

// SignUp creates a new user. Username and email collisions come back as
// ErrUsernameTaken and ErrEmailTaken.
func (s *Service) SignUp(ctx context.Context, username, email, password string) (*User, error) {
	passwordHash, err := s.HashPasswordFunc(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			if strings.Contains(pkg.ConstraintName(err), "email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metricsManager.Signup()
	log.Debugf("new user signed up: %d", user.ID)
	return user, nil
}

// Authenticate returns ErrAuthenticationFailed for both unknown users and wrong passwords.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metricsManager.Login("failed")
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.CheckPasswordFunc(password, user.PasswordHash) {
		log.Tracef("failed login attempt for user: %d", user.ID)
		s.metricsManager.Login("failed")
		return nil, ErrAuthenticationFailed
	}

	s.metricsManager.Login("ok")
	return user, nil
}

func (s *Service) Get(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
