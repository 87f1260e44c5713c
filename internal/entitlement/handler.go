package entitlement

import (
	"net/http"
	"strconv"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/ledger"
)

type Handler struct {
	ledgerRepo *ledger.Repository
}

func NewHandler(ledgerRepo *ledger.Repository) *Handler {
	return &Handler{ledgerRepo: ledgerRepo}
}

// History lists the account's most recent ledger entries, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID, ok := api.AccountIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.ledgerRepo.ListByAccountID(r.Context(), accountID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if entries == nil {
		entries = []*ledger.Entry{}
	}

	api.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}
