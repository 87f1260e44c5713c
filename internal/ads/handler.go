package ads

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/entitlement"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type watchResponse struct {
	Credits int    `json:"credits"`
	Kind    string `json:"kind"`
}

// Watch handles POST /credits/ads/{kind}/watch. It blocks for the duration
// of the ad playback and returns the confirmed balance once the reward is
// granted.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	accountID, ok := api.AccountIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	kind, ok := entitlement.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		api.HandleError(w, api.NewBadRequestError("unknown ad kind"))
		return
	}

	balance, err := h.svc.Watch(r.Context(), accountID, kind)
	if err != nil {
		if errors.Is(err, entitlement.ErrLimitReached) {
			api.HandleError(w, api.ErrDailyAdLimitReached)
			return
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, watchResponse{Credits: balance, Kind: string(kind)})
}
