package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/application"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/domain"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
)

type PharmaciesHandler struct {
	*BaseHandler
	service *application.PharmaciesService
}

func NewPharmaciesHandler(base *BaseHandler, service *application.PharmaciesService) *PharmaciesHandler {
	return &PharmaciesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreatePharmacyRequest is the request body for pharmacy registration
type CreatePharmacyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	License string `json:"license"`
}

// UpdatePharmacyRequest is the request body for pharmacy updates
type UpdatePharmacyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// SetVerifiedRequest is the request body for toggling verification
type SetVerifiedRequest struct {
	Verified bool `json:"verified"`
}

// PharmacyResponse is the JSON representation of a pharmacy
type PharmacyResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	License   string    `json:"license"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PharmacyListResponse is the paginated list response
type PharmacyListResponse struct {
	Items  []PharmacyResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// CreatePharmacy registers a new pharmacy owned by the caller
func (h *PharmaciesHandler) CreatePharmacy(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	var req CreatePharmacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	pharmacy, err := h.service.CreatePharmacy(r.Context(), principal, application.CreatePharmacyParams{
		Name:    req.Name,
		Address: req.Address,
		License: req.License,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainPharmacyToResponse(pharmacy), http.StatusCreated)
}

// GetPharmacy returns a pharmacy by ID
func (h *PharmaciesHandler) GetPharmacy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid pharmacy ID", http.StatusBadRequest)
		return
	}

	pharmacy, err := h.service.GetPharmacy(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainPharmacyToResponse(pharmacy), http.StatusOK)
}

// ListPharmacies returns pharmacies matching the query parameters
func (h *PharmaciesHandler) ListPharmacies(w http.ResponseWriter, r *http.Request) {
	filter := ports.DefaultListFilter()
	filter.Limit, filter.Offset = parsePagination(r, filter.Limit)
	filter.SearchQuery = r.URL.Query().Get("q")

	if v := r.URL.Query().Get("verified"); v != "" {
		verified := v == "true"
		filter.Verified = &verified
	}

	pharmacies, total, err := h.service.ListPharmacies(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	items := make([]PharmacyResponse, 0, len(pharmacies))
	for _, pharmacy := range pharmacies {
		items = append(items, domainPharmacyToResponse(pharmacy))
	}

	h.WriteJSONResponse(w, r, PharmacyListResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, http.StatusOK)
}

// UpdatePharmacy updates a pharmacy's presentation details
func (h *PharmaciesHandler) UpdatePharmacy(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid pharmacy ID", http.StatusBadRequest)
		return
	}

	var req UpdatePharmacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	pharmacy, err := h.service.UpdatePharmacy(r.Context(), principal, id, application.UpdatePharmacyParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainPharmacyToResponse(pharmacy), http.StatusOK)
}

// SetVerified toggles a pharmacy's verification flag
func (h *PharmaciesHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid pharmacy ID", http.StatusBadRequest)
		return
	}

	var req SetVerifiedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	pharmacy, err := h.service.SetVerified(r.Context(), principal, id, req.Verified)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainPharmacyToResponse(pharmacy), http.StatusOK)
}

// DeletePharmacy removes a pharmacy
func (h *PharmaciesHandler) DeletePharmacy(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid pharmacy ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeletePharmacy(r.Context(), principal, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func domainPharmacyToResponse(pharmacy *domain.Pharmacy) PharmacyResponse {
	return PharmacyResponse{
		ID:        pharmacy.ID,
		OwnerID:   pharmacy.OwnerID,
		Name:      pharmacy.Name,
		Address:   pharmacy.Address,
		License:   pharmacy.License,
		Verified:  pharmacy.Verified,
		CreatedAt: pharmacy.CreatedAt,
		UpdatedAt: pharmacy.UpdatedAt,
	}
}
