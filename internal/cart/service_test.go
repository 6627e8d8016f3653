package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pawmart-be/internal/product"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserCart(ctx context.Context, userID int64) ([]*CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*CartLine), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, userID, productID int64) (*CartLine, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartLine), args.Error(1)
}

func (m *MockRepository) CreateItem(ctx context.Context, params AddItemParams, priceAtAdd int64) (*CartLine, error) {
	args := m.Called(ctx, params, priceAtAdd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartLine), args.Error(1)
}

func (m *MockRepository) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *MockRepository) RemoveItem(ctx context.Context, userID, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockRepository) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter product.ListFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, params product.UpdateParams) error {
	args := m.Called(ctx, id, params)
	return args.Error(0)
}

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()
	inStock := &product.Product{ID: 10, SellerID: 100, Price: 5000,
		StockQuantity: 5, Status: product.StatusActive}

	t.Run("NewLineCapturesPrice", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductRepository)
		svc := NewService(repo, products)

		params := AddItemParams{UserID: 1, ProductID: 10, Quantity: 2}

		products.On("GetByID", ctx, int64(10)).Return(inStock, nil)
		repo.On("GetItem", ctx, int64(1), int64(10)).Return(nil, nil)
		repo.On("CreateItem", ctx, params, int64(5000)).
			Return(&CartLine{ID: 1, UserID: 1, ProductID: 10, Quantity: 2, PriceAtAdd: 5000}, nil)

		line, err := svc.AddItem(ctx, params)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), line.Subtotal())
		repo.AssertExpectations(t)
	})

	t.Run("ExistingLineBumpsQuantityKeepsPrice", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductRepository)
		svc := NewService(repo, products)

		products.On("GetByID", ctx, int64(10)).Return(inStock, nil)
		// The stored line keeps the cheaper price captured at first add.
		repo.On("GetItem", ctx, int64(1), int64(10)).
			Return(&CartLine{ID: 1, UserID: 1, ProductID: 10, Quantity: 2, PriceAtAdd: 4500}, nil)
		repo.On("UpdateQuantity", ctx, int64(1), int64(10), 3).Return(nil)

		line, err := svc.AddItem(ctx, AddItemParams{UserID: 1, ProductID: 10, Quantity: 1})
		assert.NoError(t, err)
		assert.Equal(t, 3, line.Quantity)
		assert.Equal(t, int64(4500), line.PriceAtAdd)
		repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CombinedQuantityExceedsStock", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductRepository)
		svc := NewService(repo, products)

		products.On("GetByID", ctx, int64(10)).Return(inStock, nil)
		repo.On("GetItem", ctx, int64(1), int64(10)).
			Return(&CartLine{Quantity: 4, PriceAtAdd: 5000}, nil)

		_, err := svc.AddItem(ctx, AddItemParams{UserID: 1, ProductID: 10, Quantity: 2})
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("InactiveProductRejected", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductRepository)
		svc := NewService(repo, products)

		products.On("GetByID", ctx, int64(10)).Return(&product.Product{
			ID: 10, StockQuantity: 5, Status: product.StatusInactive,
		}, nil)

		_, err := svc.AddItem(ctx, AddItemParams{UserID: 1, ProductID: 10, Quantity: 1})
		assert.ErrorIs(t, err, ErrNotPurchasable)
	})

	t.Run("ZeroQuantityRejected", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))

		_, err := svc.AddItem(ctx, AddItemParams{UserID: 1, ProductID: 10, Quantity: 0})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductRepository)
		svc := NewService(repo, products)

		products.On("GetByID", ctx, int64(404)).Return(nil, product.ErrProductNotFound)

		_, err := svc.AddItem(ctx, AddItemParams{UserID: 1, ProductID: 404, Quantity: 1})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("PositiveSetsQuantity", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("UpdateQuantity", ctx, int64(1), int64(10), 3).Return(nil)

		assert.NoError(t, svc.UpdateQuantity(ctx, UpdateItemParams{UserID: 1, ProductID: 10, Quantity: 3}))
		repo.AssertExpectations(t)
	})

	t.Run("ZeroRemovesLine", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("RemoveItem", ctx, int64(1), int64(10)).Return(nil)

		assert.NoError(t, svc.UpdateQuantity(ctx, UpdateItemParams{UserID: 1, ProductID: 10, Quantity: 0}))
		repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
