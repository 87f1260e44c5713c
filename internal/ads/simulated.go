package ads

import (
	"context"
	"time"

	"github.com/pixelpalette/backend/internal/entitlement"
)

// SimulatedProvider stands in for a real ad SDK in development and tests.
// It sleeps for realistic durations and always reports completion.
type SimulatedProvider struct {
	loadDelay        time.Duration
	interstitialShow time.Duration
	rewardedShow     time.Duration
}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{
		loadDelay:        1 * time.Second,
		interstitialShow: 2 * time.Second,
		rewardedShow:     3 * time.Second,
	}
}

func (p *SimulatedProvider) Load(ctx context.Context, _ entitlement.Kind) error {
	return sleep(ctx, p.loadDelay)
}

func (p *SimulatedProvider) Show(ctx context.Context, kind entitlement.Kind) (bool, error) {
	d := p.interstitialShow
	if kind == entitlement.KindRewarded {
		d = p.rewardedShow
	}
	if err := sleep(ctx, d); err != nil {
		return false, err
	}
	return true, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
