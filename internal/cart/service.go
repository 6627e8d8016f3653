package cart

import (
	"context"

	"pawmart-be/internal/logger"
	"pawmart-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	AddItem(ctx context.Context, params AddItemParams) (*CartLine, error)
	GetCart(ctx context.Context, userID int64) ([]*CartLine, error)
	UpdateQuantity(ctx context.Context, params UpdateItemParams) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// AddItem upserts a cart line: adding an already carted product bumps
// its quantity, keeping the price captured at first add.
func (s *service) AddItem(ctx context.Context, params AddItemParams) (*CartLine, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.productRepo.GetByID(ctx, params.ProductID)
	if err != nil {
		if err == product.ErrProductNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.IsPurchasable() {
		return nil, ErrNotPurchasable
	}

	existing, err := s.repo.GetItem(ctx, params.UserID, params.ProductID)
	if err != nil {
		return nil, err
	}

	finalQty := params.Quantity
	if existing != nil {
		finalQty += existing.Quantity
	}

	if p.StockQuantity < finalQty {
		return nil, ErrInsufficientStock
	}

	if existing == nil {
		line, err := s.repo.CreateItem(ctx, params, p.Price)
		if err != nil {
			return nil, err
		}

		logger.FromCtx(ctx).Debug("cart line created",
			zap.Int64("user_id", params.UserID),
			zap.Int64("product_id", params.ProductID),
		)
		return line, nil
	}

	if err := s.repo.UpdateQuantity(ctx, params.UserID, params.ProductID, finalQty); err != nil {
		return nil, err
	}
	existing.Quantity = finalQty
	return existing, nil
}

func (s *service) GetCart(ctx context.Context, userID int64) ([]*CartLine, error) {
	return s.repo.GetUserCart(ctx, userID)
}

// UpdateQuantity sets a line's quantity; zero or negative removes it.
func (s *service) UpdateQuantity(ctx context.Context, params UpdateItemParams) error {
	if params.Quantity <= 0 {
		return s.repo.RemoveItem(ctx, params.UserID, params.ProductID)
	}
	return s.repo.UpdateQuantity(ctx, params.UserID, params.ProductID, params.Quantity)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID int64) error {
	return s.repo.RemoveItem(ctx, userID, productID)
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}
