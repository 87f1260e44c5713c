package generation

import (
	"fmt"
	"math/rand"
	"net/url"
)

// Models accepted by the upstream image endpoint.
var Models = []string{
	"flux",
	"FLUX-3D",
	"FLUX-PRO",
	"Flux-realism",
	"Flux-anime",
	"Flux-cablyai",
	"turbo",
}

func ValidModel(m string) bool {
	for _, known := range Models {
		if m == known {
			return true
		}
	}
	return false
}

const (
	defaultWidth  = 1024
	defaultHeight = 1024
	defaultModel  = "flux"

	// RandomSeed requests a fresh seed per render.
	RandomSeed = -1

	maxSeed = 1 << 31
)

// Request describes a single image render. An absent seed or -1 means "pick
// one"; an explicit 0 is a reproducible seed like any other.
type Request struct {
	Prompt         string `json:"prompt" validate:"required"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width,omitempty" validate:"omitempty,min=64,max=1920"`
	Height         int    `json:"height,omitempty" validate:"omitempty,min=64,max=1920"`
	Seed           *int64 `json:"seed,omitempty"`
	Model          string `json:"model,omitempty"`
	NoLogo         bool   `json:"nologo,omitempty"`
	Unsafe         bool   `json:"unsafe,omitempty"`
}

// Normalize fills defaults and resolves a random seed so the caller can see
// which seed actually produced the image. Seed is never nil afterwards.
func (r *Request) Normalize() {
	if r.Width == 0 {
		r.Width = defaultWidth
	}
	if r.Height == 0 {
		r.Height = defaultHeight
	}
	if r.Model == "" {
		r.Model = defaultModel
	}
	if r.Seed == nil || *r.Seed == RandomSeed {
		seed := rand.Int63n(maxSeed)
		r.Seed = &seed
	}
}

// BuildURL renders the upstream GET URL. The prompt travels path-escaped in
// the path segment; everything else goes in the query string. Optional
// parameters are omitted rather than sent empty.
func BuildURL(base string, r *Request) string {
	q := url.Values{}
	q.Set("width", fmt.Sprintf("%d", r.Width))
	q.Set("height", fmt.Sprintf("%d", r.Height))
	q.Set("seed", fmt.Sprintf("%d", *r.Seed))
	q.Set("model", r.Model)
	if r.NegativePrompt != "" {
		q.Set("negative_prompt", r.NegativePrompt)
	}
	if r.NoLogo {
		q.Set("nologo", "true")
	}
	if r.Unsafe {
		q.Set("safe", "false")
	}
	return fmt.Sprintf("%s/prompt/%s?%s", base, url.PathEscape(r.Prompt), q.Encode())
}
