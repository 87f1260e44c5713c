package speech

import (
	"context"
	"strings"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/metrics"
)

type Service struct {
	engine Engine
}

func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// Voices returns the voice catalog.
func (s *Service) Voices() []Voice {
	return Catalog
}

// Synthesize validates the utterance, resolves the voice and renders it.
func (s *Service) Synthesize(ctx context.Context, u *Utterance) (*Audio, error) {
	if strings.TrimSpace(u.Text) == "" {
		return nil, api.NewValidationError("text is required")
	}

	voice := DefaultVoice()
	if u.VoiceID != "" {
		v, ok := FindVoice(u.VoiceID)
		if !ok {
			return nil, api.NewBadRequestError("unknown voice")
		}
		voice = v
	}
	u.Clamp()

	audio, err := s.engine.Synthesize(ctx, voice, u)
	if err != nil {
		return nil, err
	}

	metrics.SpeechSynthesesTotal.Inc()
	return audio, nil
}
