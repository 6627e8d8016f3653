package product

import (
	"context"

	"pawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, sellerID, productID int64, params UpdateParams) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return s.repo.Count(ctx, filter)
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	p, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("seller_id", p.SellerID),
	)

	return p, nil
}

// Update patches a product after verifying the caller owns it.
func (s *service) Update(ctx context.Context, sellerID, productID int64, params UpdateParams) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return ErrUnauthorized
	}

	return s.repo.Update(ctx, productID, params)
}
