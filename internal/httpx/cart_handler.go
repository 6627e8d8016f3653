package httpx

import (
	"encoding/json"
	"net/http"

	"pawmart-be/internal/cart"
)

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartLineResponse struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	SellerID    int64   `json:"seller_id"`
	Quantity    int     `json:"quantity"`
	PriceAtAdd  int64   `json:"price_at_add"`
	Subtotal    int64   `json:"subtotal"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	lines, err := h.carts.GetCart(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]cartLineResponse, 0, len(lines))
	var total int64
	for _, l := range lines {
		resp = append(resp, cartLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			SellerID:    l.SellerID,
			Quantity:    l.Quantity,
			PriceAtAdd:  l.PriceAtAdd,
			Subtotal:    l.Subtotal(),
			ImageURL:    l.ImageURL,
		})
		total += l.Subtotal()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": resp,
		"total": total,
	})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	actor := actorFrom(r)
	line, err := h.carts.AddItem(r.Context(), cart.AddItemParams{
		UserID:    actor.ID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       line.ID,
		"quantity": line.Quantity,
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	actor := actorFrom(r)
	if err := h.carts.UpdateQuantity(r.Context(), cart.UpdateItemParams{
		UserID:    actor.ID,
		ProductID: productID,
		Quantity:  req.Quantity,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	actor := actorFrom(r)
	if err := h.carts.RemoveItem(r.Context(), actor.ID, productID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if err := h.carts.Clear(r.Context(), actor.ID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
