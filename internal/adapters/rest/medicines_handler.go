package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/application"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/domain"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	"github.com/shopspring/decimal"
)

type MedicinesHandler struct {
	*BaseHandler
	service *application.MedicinesService
}

func NewMedicinesHandler(base *BaseHandler, service *application.MedicinesService) *MedicinesHandler {
	return &MedicinesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateMedicineRequest is the request body for listing a medicine
type CreateMedicineRequest struct {
	PharmacyID  uuid.UUID `json:"pharmacy_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
}

// UpdateMedicineRequest is the request body for medicine updates
type UpdateMedicineRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// SetAvailabilityRequest is the request body for toggling availability
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// MedicineResponse is the JSON representation of a medicine
type MedicineResponse struct {
	ID           uuid.UUID `json:"id"`
	PharmacyID   uuid.UUID `json:"pharmacy_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Availability bool      `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MedicineListResponse is the paginated list response
type MedicineListResponse struct {
	Items  []MedicineResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// CreateMedicine lists a new medicine under one of the caller's pharmacies
func (h *MedicinesHandler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	var req CreateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid price", http.StatusBadRequest)
		return
	}

	medicine, err := h.service.CreateMedicine(r.Context(), principal, application.CreateMedicineParams{
		PharmacyID:  req.PharmacyID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainMedicineToResponse(medicine), http.StatusCreated)
}

// GetMedicine returns a medicine by ID
func (h *MedicinesHandler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid medicine ID", http.StatusBadRequest)
		return
	}

	medicine, err := h.service.GetMedicine(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainMedicineToResponse(medicine), http.StatusOK)
}

// ListMedicines returns medicines matching the query parameters
func (h *MedicinesHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	filter := ports.DefaultListFilter()
	filter.Limit, filter.Offset = parsePagination(r, filter.Limit)
	filter.SearchQuery = r.URL.Query().Get("q")
	filter.AvailableOnly = r.URL.Query().Get("available") == "true"

	if v := r.URL.Query().Get("pharmacy_id"); v != "" {
		pharmacyID, err := uuid.Parse(v)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid pharmacy ID", http.StatusBadRequest)
			return
		}
		filter.PharmacyID = &pharmacyID
	}

	medicines, total, err := h.service.ListMedicines(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	items := make([]MedicineResponse, 0, len(medicines))
	for _, medicine := range medicines {
		items = append(items, domainMedicineToResponse(medicine))
	}

	h.WriteJSONResponse(w, r, MedicineListResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, http.StatusOK)
}

// UpdateMedicine updates a medicine's details
func (h *MedicinesHandler) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid medicine ID", http.StatusBadRequest)
		return
	}

	var req UpdateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid price", http.StatusBadRequest)
		return
	}

	medicine, err := h.service.UpdateMedicine(r.Context(), principal, id, application.UpdateMedicineParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainMedicineToResponse(medicine), http.StatusOK)
}

// SetAvailability toggles a medicine's availability flag
func (h *MedicinesHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid medicine ID", http.StatusBadRequest)
		return
	}

	var req SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	medicine, err := h.service.SetAvailability(r.Context(), principal, id, req.Available)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainMedicineToResponse(medicine), http.StatusOK)
}

// DeleteMedicine removes a medicine
func (h *MedicinesHandler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid medicine ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteMedicine(r.Context(), principal, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func domainMedicineToResponse(medicine *domain.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:           medicine.ID,
		PharmacyID:   medicine.PharmacyID,
		Name:         medicine.Name,
		Description:  medicine.Description,
		Price:        medicine.Price.String(),
		Availability: medicine.Availability,
		CreatedAt:    medicine.CreatedAt,
		UpdatedAt:    medicine.UpdatedAt,
	}
}
