package service

import (
	"context"

	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, input *domain.UpdateUserInput) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	repo   repository.UserRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("user_service"),
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	return s.repo.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()

	return s.repo.List(ctx)
}

func (s *userService) Update(ctx context.Context, id string, input *domain.UpdateUserInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	var passwordHash string
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hash)
	}

	if err := s.repo.Update(ctx, id, input, passwordHash); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateRole")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.String("role", string(role)),
	)

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User role changed",
		zap.String("user_id", id),
		zap.String("role", string(role)),
	)

	return s.repo.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	return s.repo.Delete(ctx, id)
}
