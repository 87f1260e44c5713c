package generation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/pixelpalette/backend/internal/api"
)

// DeviceIDHeader carries the anonymous device identifier for callers without
// an account.
const DeviceIDHeader = "X-Device-ID"

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Generate handles POST /generate for both authenticated and anonymous
// callers. The response body is the image itself; billing metadata travels
// in headers so the client does not have to re-fetch the render.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	caller := Caller{DeviceID: r.Header.Get(DeviceIDHeader)}
	if id, ok := api.AccountIDFromContext(r.Context()); ok {
		caller.AccountID = &id
	}

	result, err := h.svc.Generate(r.Context(), caller, &req)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.Image.ContentType)
	w.Header().Set("X-Generation-Seed", strconv.FormatInt(result.Seed, 10))
	w.Header().Set("X-Generation-Model", result.Model)
	if result.FreeGeneration {
		w.Header().Set("X-Free-Generation", "true")
	} else {
		w.Header().Set("X-Credits-Balance", strconv.Itoa(result.Credits))
		w.Header().Set("X-Show-Interstitial", strconv.FormatBool(result.ShowInterstitial))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Image.Data)
}
