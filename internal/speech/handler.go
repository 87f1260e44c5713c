package speech

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pixelpalette/backend/internal/api"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Voices handles GET /speech/voices.
func (h *Handler) Voices(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{"voices": h.svc.Voices()})
}

// Synthesize handles POST /speech. The response body is the rendered audio.
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var u Utterance
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	audio, err := h.svc.Synthesize(r.Context(), &u)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("X-Utterance-ID", audio.UtteranceID.String())
	w.Header().Set("X-Audio-Duration-Ms", strconv.Itoa(audio.DurationMS))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Data)
}
