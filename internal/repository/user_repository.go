package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, input *domain.UpdateUserInput, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("user_repository"),
	}
}

const userColumns = `id, name, email, password_hash, address, role, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u       domain.User
		rawAddr []byte
	)
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&rawAddr,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawAddr, &u.Address); err != nil {
		return nil, fmt.Errorf("failed to decode user address: %w", err)
	}

	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("email", user.Email))

	rawAddr, err := json.Marshal(user.Address)
	if err != nil {
		return fmt.Errorf("failed to encode user address: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, address, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = r.pool.QueryRow(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		rawAddr,
		string(user.Role),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrEmailTaken
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to insert user", zap.Error(err))

		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query user", zap.Error(err))

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query user by email", zap.Error(err))

		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.List")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		mylogger.Error(ctx, r.logger, "Failed to query users", zap.Error(err))

		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepo) Update(ctx context.Context, id string, input *domain.UpdateUserInput, passwordHash string) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	var rawAddr []byte
	if input.Address != nil {
		var err error
		rawAddr, err = json.Marshal(input.Address)
		if err != nil {
			return fmt.Errorf("failed to encode user address: %w", err)
		}
	}

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			password_hash = COALESCE(NULLIF($4, ''), password_hash),
			address = COALESCE($5, address),
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.pool.Exec(ctx, query, id, input.Name, input.Email, passwordHash, rawAddr)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update user", zap.Error(err))

		return fmt.Errorf("failed to update user: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.UpdateRole")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.String("role", string(role)),
	)

	commandTag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		id,
		string(role),
	)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update user role", zap.Error(err))

		return fmt.Errorf("failed to update user role: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to delete user", zap.Error(err))

		return fmt.Errorf("failed to delete user: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
