package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sakashimaa/go-shop-api/internal/auth"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Address  domain.Address `json:"address"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login returns a signed token on success; a wrong password and an
	// unknown email both come back as ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Role(ctx context.Context, userID string) (domain.Role, error)
}

type authService struct {
	users    repository.UserRepository
	secret   string
	tokenTTL time.Duration
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
		tracer:   otel.Tracer("auth_service"),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	span.SetAttributes(attribute.String("email", input.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Address:      input.Address,
		Role:         domain.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		mylogger.Warn(ctx, s.logger, "Login failed", zap.String("email", email))

		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.secret, user.ID, string(user.Role), s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *authService) Role(ctx context.Context, userID string) (domain.Role, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Role")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return user.Role, nil
}
