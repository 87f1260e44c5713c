package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// Audio is a rendered utterance.
type Audio struct {
	UtteranceID uuid.UUID
	Data        []byte
	ContentType string
	// Duration of the clip in milliseconds.
	DurationMS int
}

// Engine renders an utterance to audio.
type Engine interface {
	Synthesize(ctx context.Context, voice Voice, u *Utterance) (*Audio, error)
}

// SimulatedEngine produces silent WAV clips whose length tracks the text
// length and speaking rate. It stands in for a real synthesis backend in
// development and tests.
type SimulatedEngine struct{}

func NewSimulatedEngine() *SimulatedEngine {
	return &SimulatedEngine{}
}

const (
	sampleRate = 16000
	// Rough speaking pace used to size the clip.
	wordsPerSecond = 2.5
)

func (e *SimulatedEngine) Synthesize(ctx context.Context, _ Voice, u *Utterance) (*Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := len(strings.Fields(u.Text))
	if words == 0 {
		words = 1
	}
	seconds := float64(words) / (wordsPerSecond * u.Rate)
	samples := int(seconds * sampleRate)
	if samples < sampleRate/10 {
		samples = sampleRate / 10
	}

	return &Audio{
		UtteranceID: uuid.New(),
		Data:        wavSilence(samples),
		ContentType: "audio/wav",
		DurationMS:  samples * 1000 / sampleRate,
	}, nil
}

// wavSilence writes a minimal mono 16-bit PCM WAV file of the given sample
// count, all zero samples.
func wavSilence(samples int) []byte {
	dataLen := samples * 2
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))

	return buf.Bytes()
}
