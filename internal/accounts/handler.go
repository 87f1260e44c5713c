package accounts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/events"
)

type Handler struct {
	svc       *Service
	publisher *events.Publisher
	validate  *validator.Validate
}

func NewHandler(svc *Service, publisher *events.Publisher) *Handler {
	return &Handler{svc: svc, publisher: publisher, validate: validator.New()}
}

type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
}

// Me handles GET /account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requestAccountID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	account, err := h.svc.GetByID(r.Context(), accountID)
	if err != nil {
		slog.Error("getting account", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if account == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	api.JSON(w, http.StatusOK, account)
}

// UpdateUsername handles PATCH /account.
func (h *Handler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requestAccountID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req UpdateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := h.svc.UpdateUsername(r.Context(), accountID, req.Username); err != nil {
		slog.Error("updating username", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "username updated")
}

// Delete handles DELETE /account. The delete is permanent: counters and
// ledger rows cascade with the account row.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requestAccountID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.svc.Delete(r.Context(), accountID); err != nil {
		slog.Error("deleting account", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	h.publisher.TryPublishAuthState(r.Context(), accountID, "", events.AuthStateDeleted)

	api.JSONMessage(w, http.StatusOK, "account deleted")
}

func (h *Handler) requestAccountID(r *http.Request) (uuid.UUID, bool) {
	return api.AccountIDFromContext(r.Context())
}
