package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/users/application"
	"github.com/pharmaseek/marketplace/backend/internal/users/domain"
)

type UsersHandler struct {
	*BaseHandler
	service *application.UsersService
}

func NewUsersHandler(base *BaseHandler, service *application.UsersService) *UsersHandler {
	return &UsersHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterUserRequest is the request body for user registration
type RegisterUserRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserResponse is the JSON representation of a user
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterUser creates the internal user row for an authenticated identity.
// Subject and email come from the verified token, never the request body.
func (h *UsersHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetJWTSubject(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Subject not found in context", http.StatusUnauthorized)
		return
	}

	email, ok := middleware.GetJWTEmail(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Email not found in context", http.StatusUnauthorized)
		return
	}

	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	role, valid := authz.ParseRole(req.Role)
	if !valid {
		h.WriteJSONError(w, r, "validation_error", "Invalid role", http.StatusBadRequest)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), application.RegisterUserParams{
		Subject:  subject,
		Email:    email,
		Username: req.Username,
		Role:     role,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainUserToResponse(user), http.StatusCreated)
}

// GetCurrentUser returns the profile of the authenticated user
func (h *UsersHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.service.GetUser(r.Context(), principal.ID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainUserToResponse(user), http.StatusOK)
}

// GetUser returns a user by ID. Only admins or the user themselves may look
// up a profile.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid user ID", http.StatusBadRequest)
		return
	}

	if id != principal.ID && !principal.IsAdmin() {
		h.WriteJSONError(w, r, "forbidden", "Insufficient permissions", http.StatusForbidden)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainUserToResponse(user), http.StatusOK)
}

func domainUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
