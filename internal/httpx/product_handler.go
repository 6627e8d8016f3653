package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pawmart-be/internal/product"
)

type ProductHandler struct {
	products product.Service
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

type productResponse struct {
	ID            int64   `json:"id"`
	SellerID      int64   `json:"seller_id"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         int64   `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Status        string  `json:"status"`
	ImageURL      *string `json:"image_url,omitempty"`
	IsPurchasable bool    `json:"is_purchasable"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		SellerID:      p.SellerID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		ImageURL:      p.ImageURL,
		IsPurchasable: p.IsPurchasable(),
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := product.ListFilter{}

	if s := r.URL.Query().Get("search"); s != "" {
		filter.Search = &s
	}
	if c := r.URL.Query().Get("category_id"); c != "" {
		if id, err := strconv.ParseInt(c, 10, 64); err == nil {
			filter.CategoryID = &id
		}
	}
	if s := r.URL.Query().Get("seller_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.SellerID = &id
		}
	}
	status := product.StatusActive
	filter.Status = &status
	filter.Limit = parseInt32(r.URL.Query().Get("limit"))
	filter.Offset = parseInt32(r.URL.Query().Get("offset"))

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type createProductRequest struct {
	CategoryID    *int64  `json:"category_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         int64   `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      *string `json:"image_url"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price <= 0 || req.StockQuantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, positive price and non-negative stock are required"})
		return
	}

	actor := actorFrom(r)
	p, err := h.products.Create(r.Context(), product.CreateParams{
		SellerID:      actor.ID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

type updateProductRequest struct {
	CategoryID    *int64  `json:"category_id"`
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Price         *int64  `json:"price"`
	StockQuantity *int    `json:"stock_quantity"`
	ImageURL      *string `json:"image_url"`
	Status        *string `json:"status"`
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params := product.UpdateParams{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	}
	if req.Status != nil {
		status := product.ProductStatus(*req.Status)
		params.Status = &status
	}

	actor := actorFrom(r)
	if err := h.products.Update(r.Context(), actor.ID, id, params); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func parseInt32(s string) int32 {
	n, _ := strconv.ParseInt(s, 10, 32)
	return int32(n)
}
