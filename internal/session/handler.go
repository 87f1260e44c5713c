package session

import (
	"net/http"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/entitlement"
)

type Handler struct {
	mgr *Manager
	cfg config.CreditsConfig
}

func NewHandler(mgr *Manager, cfg config.CreditsConfig) *Handler {
	return &Handler{mgr: mgr, cfg: cfg}
}

type adStatus struct {
	WatchedToday int  `json:"watched_today"`
	DailyCap     int  `json:"daily_cap"`
	Reward       int  `json:"reward"`
	Available    bool `json:"available"`
}

type statusResponse struct {
	Credits        int      `json:"credits"`
	GenerationCost int      `json:"generation_cost"`
	Rewarded       adStatus `json:"rewarded"`
	Interstitial   adStatus `json:"interstitial"`
}

// CreditsStatus serves the balance and per-kind ad availability from the
// session mirror. The mirror is rebuilt when its counters have gone stale
// across a calendar-day boundary.
func (h *Handler) CreditsStatus(w http.ResponseWriter, r *http.Request) {
	accountID, ok := api.AccountIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	s, err := h.mgr.Current(r.Context(), accountID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if s == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	api.JSON(w, http.StatusOK, statusResponse{
		Credits:        s.Credits,
		GenerationCost: h.cfg.GenerationCost,
		Rewarded:       h.adStatus(s, entitlement.KindRewarded),
		Interstitial:   h.adStatus(s, entitlement.KindInterstitial),
	})
}

func (h *Handler) adStatus(s *Session, kind entitlement.Kind) adStatus {
	ent := h.mgr.entitlement
	return adStatus{
		WatchedToday: s.Counters.Count(kind),
		DailyCap:     ent.Cap(kind),
		Reward:       ent.Reward(kind),
		Available:    ent.CanClaim(&s.Counters, kind),
	}
}
