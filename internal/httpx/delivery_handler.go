package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"pawmart-be/internal/delivery"
)

type DeliveryHandler struct {
	deliveries delivery.Service
}

func NewDeliveryHandler(deliveries delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries}
}

type deliveryResponse struct {
	ID              int64      `json:"id"`
	OrderID         int64      `json:"order_id"`
	RiderID         int64      `json:"rider_id"`
	Status          string     `json:"status"`
	DeliveryNotes   *string    `json:"delivery_notes,omitempty"`
	AssignedAt      time.Time  `json:"assigned_at"`
	PickedUpAt      *time.Time `json:"picked_up_at,omitempty"`
	OnTheWayAt      *time.Time `json:"on_the_way_at,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	CustomerName    string     `json:"customer_name,omitempty"`
	CustomerPhone   string     `json:"customer_phone,omitempty"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
}

func toDeliveryResponse(d *delivery.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:              d.ID,
		OrderID:         d.OrderID,
		RiderID:         d.RiderID,
		Status:          string(d.Status),
		DeliveryNotes:   d.DeliveryNotes,
		AssignedAt:      d.AssignedAt,
		PickedUpAt:      d.PickedUpAt,
		OnTheWayAt:      d.OnTheWayAt,
		DeliveredAt:     d.DeliveredAt,
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		ShippingAddress: d.ShippingAddress,
	}
}

type assignRequest struct {
	OrderID int64   `json:"order_id"`
	RiderID int64   `json:"rider_id"`
	Notes   *string `json:"notes"`
}

func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := h.deliveries.Assign(r.Context(), actorFrom(r), req.OrderID, req.RiderID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDeliveryResponse(d))
}

type deliveryStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := pathID(r, "deliveryID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery id"})
		return
	}

	var req deliveryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := h.deliveries.UpdateStatus(r.Context(), actorFrom(r), deliveryID,
		delivery.DeliveryStatus(req.Status), req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDeliveryResponse(d))
}

func (h *DeliveryHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var status *delivery.DeliveryStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ds := delivery.DeliveryStatus(s)
		status = &ds
	}

	deliveries, err := h.deliveries.ListForRider(r.Context(), actor.ID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]deliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		resp = append(resp, toDeliveryResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := pathID(r, "deliveryID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery id"})
		return
	}

	d, err := h.deliveries.GetByID(r.Context(), actorFrom(r), deliveryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDeliveryResponse(d))
}

type riderAvailabilityResponse struct {
	RiderID           int64  `json:"rider_id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	CurrentDeliveries int    `json:"current_deliveries"`
	IsAvailable       bool   `json:"is_available"`
}

func (h *DeliveryHandler) RiderAvailability(w http.ResponseWriter, r *http.Request) {
	riders, err := h.deliveries.RidersWithAvailability(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]riderAvailabilityResponse, 0, len(riders))
	for _, rider := range riders {
		resp = append(resp, riderAvailabilityResponse{
			RiderID:           rider.RiderID,
			Name:              rider.FirstName + " " + rider.LastName,
			Phone:             rider.Phone,
			CurrentDeliveries: rider.CurrentDeliveries,
			IsAvailable:       rider.IsAvailable(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
