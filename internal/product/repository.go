package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, id int64, params UpdateParams) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id, seller_id, category_id, name, COALESCE(description, ''),
	price, stock_quantity, status, image_url, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Description,
		&p.Price, &p.StockQuantity, &p.Status, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	where, args := buildProductWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT` + productColumns + ` FROM products WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY created_at DESC` +
		` LIMIT $` + fmt.Sprint(len(args)+1) +
		` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	where, args := buildProductWhere(filter)

	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count)
	return count, err
}

func buildProductWhere(filter ListFilter) ([]string, []any) {
	where := []string{"1=1"}
	args := []any{}

	if filter.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *filter.CategoryID)
	}
	if filter.SellerID != nil {
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)+1))
		args = append(args, *filter.SellerID)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != nil && *filter.Search != "" {
		where = append(where,
			fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)",
				len(args)+1, len(args)+1))
		args = append(args, "%"+*filter.Search+"%")
	}

	return where, args
}

func (r *repository) Create(ctx context.Context, params CreateParams) (*Product, error) {
	query := `
		INSERT INTO products (seller_id, category_id, name, description, price, stock_quantity, status, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
		RETURNING` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		params.SellerID, params.CategoryID, params.Name, params.Description,
		params.Price, params.StockQuantity, params.ImageURL,
	)
	return scanProduct(row)
}

func (r *repository) Update(ctx context.Context, id int64, params UpdateParams) error {
	set := []string{}
	args := []any{}

	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if params.CategoryID != nil {
		add("category_id", *params.CategoryID)
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.StockQuantity != nil {
		add("stock_quantity", *params.StockQuantity)
	}
	if params.ImageURL != nil {
		add("image_url", *params.ImageURL)
	}
	if params.Status != nil {
		add("status", *params.Status)
	}

	if len(set) == 0 {
		return ErrNoUpdateFields
	}

	set = append(set, "updated_at = NOW()")
	query := `UPDATE products SET ` + strings.Join(set, ", ") +
		fmt.Sprintf(" WHERE id = $%d", len(args)+1)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
