package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByName returns the first product with the given display name.
	// Names are unique by convention only.
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Update(ctx context.Context, id string, input *domain.UpdateProductInput) error
	Delete(ctx context.Context, id string) error
}

type productRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("product_repository"),
	}
}

const productColumns = `
	id, name, description, price, COALESCE(category_id::text, ''), brand,
	stock, images, rating, created_at, updated_at
`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&p.Brand,
		&p.Stock,
		&p.Images,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", product.Name))

	query := `
		INSERT INTO products (id, name, description, price, category_id, brand,
			stock, images, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.Brand,
		product.Stock,
		product.Images,
		product.Rating,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to insert product", zap.Error(err))

		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query product", zap.Error(err))

		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

func (r *productRepo) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByName")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	row := r.pool.QueryRow(
		ctx,
		`SELECT `+productColumns+` FROM products WHERE name = $1 ORDER BY created_at LIMIT 1`,
		name,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query product by name", zap.Error(err))

		return nil, fmt.Errorf("failed to query product by name: %w", err)
	}

	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
}

func (r *productRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Search")
	defer span.End()

	span.SetAttributes(attribute.String("query", query))

	// whitespace-insensitive match: "wi dget" still finds "Widget" in the
	// name or description
	squashed := strings.ReplaceAll(strings.TrimSpace(query), " ", "")
	pattern := "%" + strings.Join(strings.Split(squashed, ""), "%") + "%"

	return r.query(
		ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE $1 OR description ILIKE $1 ORDER BY name`,
		pattern,
	)
}

func (r *productRepo) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		mylogger.Error(ctx, r.logger, "Failed to query products", zap.Error(err))

		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			mylogger.Error(ctx, r.logger, "Failed to scan product row", zap.Error(err))

			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, id string, input *domain.UpdateProductInput) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	query := `
		UPDATE products
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			category_id = COALESCE(NULLIF($5, '')::uuid, category_id),
			brand = COALESCE($6, brand),
			stock = COALESCE($7, stock),
			images = COALESCE($8, images),
			rating = COALESCE($9, rating),
			updated_at = NOW()
		WHERE id = $1
	`

	var categoryID string
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	}

	commandTag, err := r.pool.Exec(
		ctx,
		query,
		id,
		input.Name,
		input.Description,
		input.Price,
		categoryID,
		input.Brand,
		input.Stock,
		input.Images,
		input.Rating,
	)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update product", zap.Error(err))

		return fmt.Errorf("failed to update product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to delete product", zap.Error(err))

		return fmt.Errorf("failed to delete product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}
