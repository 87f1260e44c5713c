package ads

import (
	"context"
	"fmt"

	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/entitlement"
)

// Provider abstracts an ad network. Load prepares an ad of the given kind;
// Show plays it and reports whether the viewer completed it. An incomplete
// ad earns nothing.
type Provider interface {
	Load(ctx context.Context, kind entitlement.Kind) error
	Show(ctx context.Context, kind entitlement.Kind) (completed bool, err error)
}

// NewProvider selects the provider implementation from config.
func NewProvider(cfg config.AdsConfig) (Provider, error) {
	switch cfg.Provider {
	case "simulated":
		return NewSimulatedProvider(), nil
	case "network":
		return NewNetworkProvider(cfg.NetworkURL), nil
	}
	return nil, fmt.Errorf("unknown ads provider %q", cfg.Provider)
}
