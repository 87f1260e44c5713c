package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpalette/backend/internal/accounts"
	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/entitlement"
)

func newTestHandler(t *testing.T) (*Handler, *Manager, *fakeAccountsRepo, *fakeCounterRepo) {
	t.Helper()
	mgr, accountsRepo, counterRepo := newTestManager(t)
	h := NewHandler(mgr, config.CreditsConfig{GenerationCost: 10})
	return h, mgr, accountsRepo, counterRepo
}

func doStatusRequest(h *Handler, accountID *uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	if accountID != nil {
		req = req.WithContext(api.WithAccountID(req.Context(), *accountID))
	}
	rec := httptest.NewRecorder()
	h.CreditsStatus(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var body struct {
		Data statusResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Data
}

func TestCreditsStatusServedFromMirror(t *testing.T) {
	h, mgr, accountsRepo, _ := newTestHandler(t)
	id := uuid.New()
	accountsRepo.byID[id] = &accounts.Account{ID: id, Email: "fox@example.com", Credits: 30}

	rec := doStatusRequest(h, &id)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeStatus(t, rec)
	assert.Equal(t, 30, status.Credits)
	assert.Equal(t, 10, status.GenerationCost)
	assert.Equal(t, adStatus{WatchedToday: 0, DailyCap: 3, Reward: 20, Available: true}, status.Rewarded)
	assert.Equal(t, adStatus{WatchedToday: 0, DailyCap: 5, Reward: 10, Available: true}, status.Interstitial)

	// A store change without a credit event is invisible: the endpoint
	// reads the mirror, not the repository.
	accountsRepo.byID[id].Credits = 99
	assert.Equal(t, 30, decodeStatus(t, doStatusRequest(h, &id)).Credits)

	// A confirmed balance pushed through the mirror shows up.
	mgr.UpdateCredits(id, 99)
	assert.Equal(t, 99, decodeStatus(t, doStatusRequest(h, &id)).Credits)
}

func TestCreditsStatusRefreshesAcrossMidnight(t *testing.T) {
	h, mgr, accountsRepo, counterRepo := newTestHandler(t)
	id := uuid.New()
	accountsRepo.byID[id] = &accounts.Account{ID: id, Email: "fox@example.com", Credits: 30}

	require.Equal(t, http.StatusOK, doStatusRequest(h, &id).Code)

	// Age the cached mirror and the stored counters past a day boundary.
	old := time.Now().Add(-48 * time.Hour)
	mgr.mu.Lock()
	mgr.sessions[id].Counters = entitlement.Counters{AccountID: id, Rewarded: 3, LastReset: old}
	mgr.mu.Unlock()
	counterRepo.counters[id] = &entitlement.Counters{AccountID: id, Rewarded: 3, LastReset: old}

	status := decodeStatus(t, doStatusRequest(h, &id))
	assert.Zero(t, status.Rewarded.WatchedToday, "yesterday's counters should reset on read")
	assert.True(t, status.Rewarded.Available)
}

func TestCreditsStatusRequiresAccount(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	rec := doStatusRequest(h, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	unknown := uuid.New()
	rec = doStatusRequest(h, &unknown)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
