package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"pawmart-be/internal/order"
	"pawmart-be/internal/review"
)

type OrderHandler struct {
	orders  order.Service
	reviews review.Repository
}

func NewOrderHandler(orders order.Service, reviews review.Repository) *OrderHandler {
	return &OrderHandler{orders: orders, reviews: reviews}
}

type orderItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	PriceAtTime int64  `json:"price_at_time"`
	Subtotal    int64  `json:"subtotal"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"user_id"`
	SellerID        int64               `json:"seller_id"`
	TotalAmount     int64               `json:"total_amount"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           *string             `json:"notes,omitempty"`
	RiderID         *int64              `json:"rider_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	Items           []orderItemResponse `json:"items,omitempty"`
	CustomerName    string              `json:"customer_name,omitempty"`
	RiderName       string              `json:"rider_name,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		SellerID:        o.SellerID,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		RiderID:         o.RiderID,
		CreatedAt:       o.CreatedAt,
		DeliveredAt:     o.DeliveredAt,
		CustomerName:    o.CustomerName,
		RiderName:       o.RiderName,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
			Subtotal:    item.Subtotal(),
		})
	}
	return resp
}

type checkoutRequest struct {
	ShippingAddress string  `json:"shipping_address"`
	PaymentMethod   string  `json:"payment_method"`
	Notes           *string `json:"notes"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ShippingAddress == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shipping address is required"})
		return
	}

	actor := actorFrom(r)
	orders, err := h.orders.Checkout(r.Context(), actor.ID, order.CheckoutParams{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"orders": resp})
}

func listFilterFrom(r *http.Request) order.ListFilter {
	filter := order.ListFilter{
		Limit:  parseInt32(r.URL.Query().Get("limit")),
		Offset: parseInt32(r.URL.Query().Get("offset")),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := order.Status(s)
		filter.Status = &status
	}
	return filter
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	orders, err := h.orders.ListForUser(r.Context(), actor.ID, listFilterFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) ListForSeller(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	orders, err := h.orders.ListForSeller(r.Context(), actor, listFilterFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	o, err := h.orders.GetDetail(r.Context(), actorFrom(r), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.orders.Transition(r.Context(), actorFrom(r), orderID, order.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := map[string]any{"order": toOrderResponse(result.Order)}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	if err := h.orders.Cancel(r.Context(), actorFrom(r), orderID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *OrderHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	o, err := h.orders.ConfirmDelivery(r.Context(), actorFrom(r), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) ReviewEligibility(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	actor := actorFrom(r)
	products, err := h.reviews.EligibleProducts(r.Context(), actor.ID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}
