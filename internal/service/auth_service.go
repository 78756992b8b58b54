package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/repo/mongodb"
	"github.com/naturalmart/shop-api/pkg/auth"
	"github.com/naturalmart/shop-api/pkg/config"
	"github.com/naturalmart/shop-api/pkg/events"
	"github.com/naturalmart/shop-api/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) error
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
}

type authService struct {
	userRepo mongodb.UserRepository
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(userRepo mongodb.UserRepository, eventBus events.Publisher, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		eventBus: eventBus,
		config:   cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return domain.ErrEmailTaken
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: passwordHash,
		Role:     domain.RoleCustomer,
	}

	// The unique email index backs this up if two registrations race past
	// the existence check above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	if s.eventBus != nil {
		event := events.UserRegisteredEvent{
			Email:        user.Email,
			Name:         user.Name,
			RegisteredAt: time.Now().UTC(),
		}
		if err := s.eventBus.Publish(ctx, events.UserRegistered, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "email", user.Email)
		}
	}

	return nil
}

// Login reports a single generic error for both an unknown email and a
// password mismatch.
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewSessionToken(
		user.Email,
		user.Name,
		s.config.Auth.JWTSecret,
		s.config.Auth.SessionTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &domain.LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    user.ToUserInfo(),
		Token:   token,
	}, nil
}
