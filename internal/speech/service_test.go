package speech

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpalette/backend/internal/api"
)

func TestUtteranceClamp(t *testing.T) {
	u := &Utterance{Text: "hello"}
	u.Clamp()
	assert.Equal(t, 1.0, u.Rate)
	assert.Equal(t, 1.0, u.Pitch)

	u = &Utterance{Text: "hello", Rate: 5.0, Pitch: 0.1}
	u.Clamp()
	assert.Equal(t, 2.0, u.Rate)
	assert.Equal(t, 0.5, u.Pitch)

	u = &Utterance{Text: "hello", Rate: 1.5, Pitch: 0.8}
	u.Clamp()
	assert.Equal(t, 1.5, u.Rate)
	assert.Equal(t, 0.8, u.Pitch)
}

func TestFindVoice(t *testing.T) {
	v, ok := FindVoice("ja-JP-neural-f1")
	require.True(t, ok)
	assert.Equal(t, "Hana", v.Name)
	assert.True(t, v.Neural)

	_, ok = FindVoice("xx-XX-none")
	assert.False(t, ok)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	svc := NewService(NewSimulatedEngine())

	_, err := svc.Synthesize(context.Background(), &Utterance{Text: "  "})
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestSynthesizeRejectsUnknownVoice(t *testing.T) {
	svc := NewService(NewSimulatedEngine())

	_, err := svc.Synthesize(context.Background(), &Utterance{Text: "hello", VoiceID: "xx-XX-none"})
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestSynthesizeProducesWav(t *testing.T) {
	svc := NewService(NewSimulatedEngine())

	audio, err := svc.Synthesize(context.Background(), &Utterance{Text: "the quick brown fox jumps over the lazy dog"})
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", audio.ContentType)
	assert.Equal(t, "RIFF", string(audio.Data[:4]))
	assert.Equal(t, "WAVE", string(audio.Data[8:12]))
	assert.Positive(t, audio.DurationMS)
}

func TestFasterRateProducesShorterClip(t *testing.T) {
	svc := NewService(NewSimulatedEngine())
	text := "one two three four five six seven eight nine ten"

	slow, err := svc.Synthesize(context.Background(), &Utterance{Text: text, Rate: 0.5})
	require.NoError(t, err)
	fast, err := svc.Synthesize(context.Background(), &Utterance{Text: text, Rate: 2.0})
	require.NoError(t, err)

	assert.Greater(t, slow.DurationMS, fast.DurationMS)
}
