package product

import "time"

type ProductStatus string

const (
	StatusActive     ProductStatus = "active"
	StatusInactive   ProductStatus = "inactive"
	StatusOutOfStock ProductStatus = "out_of_stock"
)

// Product is a catalog entry owned by a seller. Price is in minor
// currency units. StockQuantity is mutated only through the guarded
// reserve/restore statements in the repository.
type Product struct {
	ID            int64
	SellerID      int64
	CategoryID    *int64
	Name          string
	Description   string
	Price         int64
	StockQuantity int
	Status        ProductStatus
	ImageURL      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPurchasable is derived at read time; the stored status is never
// auto-flipped to out_of_stock when the quantity hits zero.
func (p *Product) IsPurchasable() bool {
	return p.Status == StatusActive && p.StockQuantity > 0
}

type ListFilter struct {
	CategoryID *int64
	Search     *string
	SellerID   *int64
	Status     *ProductStatus
	Limit      int32
	Offset     int32
}

type CreateParams struct {
	SellerID      int64
	CategoryID    *int64
	Name          string
	Description   string
	Price         int64
	StockQuantity int
	ImageURL      *string
}

type UpdateParams struct {
	CategoryID    *int64
	Name          *string
	Description   *string
	Price         *int64
	StockQuantity *int
	ImageURL      *string
	Status        *ProductStatus
}
