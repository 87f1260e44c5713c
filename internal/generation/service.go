package generation

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/accounts"
	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/ledger"
	"github.com/pixelpalette/backend/internal/metrics"
)

// Caller identifies who is asking for a render: an authenticated account or
// an anonymous device.
type Caller struct {
	AccountID *uuid.UUID
	DeviceID  string
}

func (c Caller) Authenticated() bool {
	return c.AccountID != nil
}

// Result is a completed render plus the billing outcome.
type Result struct {
	Image            *Image
	Seed             int64
	Model            string
	Credits          int
	FreeGeneration   bool
	ShowInterstitial bool
}

// Service gates renders behind the credit economy. Authenticated accounts
// pay the generation cost per image; an anonymous device gets exactly one
// free render, after which it must log in.
type Service struct {
	client    *Client
	accounts  *accounts.Service
	free      *FreeUseStore
	credits   config.CreditsConfig
	adChance  float64
	randFloat func() float64
}

func NewService(client *Client, accountsSvc *accounts.Service, free *FreeUseStore, creditsCfg config.CreditsConfig, adsCfg config.AdsConfig) *Service {
	return &Service{
		client:    client,
		accounts:  accountsSvc,
		free:      free,
		credits:   creditsCfg,
		adChance:  adsCfg.InterstitialChance,
		randFloat: rand.Float64,
	}
}

// Generate runs the full gated flow. Denial checks run in a fixed order:
// prompt validation first, then the anonymous free-use gate, then the
// balance gate. The debit happens only after the upstream fetch succeeds.
func (s *Service) Generate(ctx context.Context, caller Caller, req *Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, api.NewValidationError("prompt is required")
	}
	if req.Model != "" && !ValidModel(req.Model) {
		return nil, api.NewBadRequestError("unknown model")
	}
	req.Normalize()

	if !caller.Authenticated() {
		return s.generateAnonymous(ctx, caller, req)
	}
	return s.generateAuthenticated(ctx, *caller.AccountID, req)
}

func (s *Service) generateAnonymous(ctx context.Context, caller Caller, req *Request) (*Result, error) {
	if caller.DeviceID == "" {
		return nil, api.NewBadRequestError("device id is required for anonymous generation")
	}

	used, err := s.free.Used(ctx, caller.DeviceID)
	if err != nil {
		return nil, err
	}
	if used {
		metrics.GenerationsTotal.WithLabelValues("denied_login_required").Inc()
		return nil, api.ErrLoginRequired
	}

	img, err := s.client.Fetch(ctx, req)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	if err := s.free.MarkUsed(ctx, caller.DeviceID); err != nil {
		// The image is already rendered; losing the flag only risks one
		// extra free render for this device.
		slog.Warn("marking free generation used failed", "device_id", caller.DeviceID, "error", err)
	}

	metrics.GenerationsTotal.WithLabelValues("free").Inc()
	return &Result{Image: img, Seed: *req.Seed, Model: req.Model, FreeGeneration: true}, nil
}

func (s *Service) generateAuthenticated(ctx context.Context, accountID uuid.UUID, req *Request) (*Result, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, api.ErrUnauthorized
	}
	if account.Credits < s.credits.GenerationCost {
		metrics.GenerationsTotal.WithLabelValues("denied_insufficient_credits").Inc()
		return nil, api.ErrInsufficientCredits
	}

	img, err := s.client.Fetch(ctx, req)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	balance, err := s.accounts.ApplyDelta(ctx, accountID, -s.credits.GenerationCost, ledger.ReasonGenerationSpend)
	if err != nil {
		// Render succeeded but the debit did not. Surface the image anyway
		// and leave reconciliation to the ledger.
		slog.Error("debiting generation cost failed", "account_id", accountID, "error", err)
		balance = account.Credits
	}

	metrics.GenerationsTotal.WithLabelValues("paid").Inc()
	return &Result{
		Image:            img,
		Seed:             *req.Seed,
		Model:            req.Model,
		Credits:          balance,
		ShowInterstitial: s.randFloat() < s.adChance,
	}, nil
}
