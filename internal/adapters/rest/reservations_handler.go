package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/application"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/domain"
)

type ReservationsHandler struct {
	*BaseHandler
	service *application.ReservationsService
}

func NewReservationsHandler(base *BaseHandler, service *application.ReservationsService) *ReservationsHandler {
	return &ReservationsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateReservationRequest is the request body for creating a reservation
type CreateReservationRequest struct {
	MedicineID uuid.UUID `json:"medicine_id"`
}

// SetStatusRequest is the request body for status transitions
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ReservationResponse is the JSON representation of a reservation
type ReservationResponse struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	MedicineID  uuid.UUID `json:"medicine_id"`
	PharmacyID  uuid.UUID `json:"pharmacy_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReservationListResponse is the paginated list response
type ReservationListResponse struct {
	Items  []ReservationResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// CreateReservation reserves a medicine for the caller
func (h *ReservationsHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.MedicineID == uuid.Nil {
		h.WriteJSONError(w, r, "validation_error", "medicine_id is required", http.StatusBadRequest)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), principal, req.MedicineID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainReservationToResponse(reservation), http.StatusCreated)
}

// GetReservation returns a reservation visible to the caller
func (h *ReservationsHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	reservation, err := h.service.GetReservation(r.Context(), principal, id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainReservationToResponse(reservation), http.StatusOK)
}

// ListReservations returns the caller's own reservations, or every
// reservation when the caller is an admin
func (h *ReservationsHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	status, ok := parseStatusFilter(r)
	if !ok {
		h.WriteJSONError(w, r, "validation_error", "Invalid status filter", http.StatusBadRequest)
		return
	}
	limit, offset := parsePagination(r, 20)

	var (
		reservations []*domain.Reservation
		total        int
		err          error
	)
	if principal.IsAdmin() {
		reservations, total, err = h.service.ListAllReservations(r.Context(), principal, status, limit, offset)
	} else {
		reservations, total, err = h.service.ListMyReservations(r.Context(), principal, status, limit, offset)
	}
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, buildReservationList(reservations, total, limit, offset), http.StatusOK)
}

// ListPharmacyReservations returns reservations serviced by a pharmacy
func (h *ReservationsHandler) ListPharmacyReservations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	pharmacyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid pharmacy ID", http.StatusBadRequest)
		return
	}

	status, ok := parseStatusFilter(r)
	if !ok {
		h.WriteJSONError(w, r, "validation_error", "Invalid status filter", http.StatusBadRequest)
		return
	}
	limit, offset := parsePagination(r, 20)

	reservations, total, err := h.service.ListPharmacyReservations(r.Context(), principal, pharmacyID, status, limit, offset)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, buildReservationList(reservations, total, limit, offset), http.StatusOK)
}

// SetStatus applies a status transition to a reservation
func (h *ReservationsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid reservation status", http.StatusBadRequest)
		return
	}

	reservation, err := h.service.SetStatus(r.Context(), principal, id, status)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainReservationToResponse(reservation), http.StatusOK)
}

// DeleteReservation permanently removes a reservation
func (h *ReservationsHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteReservation(r.Context(), principal, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func parseStatusFilter(r *http.Request) (*domain.Status, bool) {
	v := r.URL.Query().Get("status")
	if v == "" {
		return nil, true
	}
	status, err := domain.ParseStatus(v)
	if err != nil {
		return nil, false
	}
	return &status, true
}

func buildReservationList(reservations []*domain.Reservation, total, limit, offset int) ReservationListResponse {
	items := make([]ReservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		items = append(items, domainReservationToResponse(reservation))
	}
	return ReservationListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}

func domainReservationToResponse(reservation *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:          reservation.ID,
		RequesterID: reservation.RequesterID,
		MedicineID:  reservation.MedicineID,
		PharmacyID:  reservation.PharmacyID,
		Status:      string(reservation.Status),
		CreatedAt:   reservation.CreatedAt,
		UpdatedAt:   reservation.UpdatedAt,
	}
}
