package ads

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/entitlement"
)

// stubProvider completes instantly so tests do not sleep.
type stubProvider struct {
	loadErr   error
	showErr   error
	completed bool
	loads     int
	shows     int
}

func (p *stubProvider) Load(_ context.Context, _ entitlement.Kind) error {
	p.loads++
	return p.loadErr
}

func (p *stubProvider) Show(_ context.Context, _ entitlement.Kind) (bool, error) {
	p.shows++
	return p.completed, p.showErr
}

type fakeCounterRepo struct {
	counters map[uuid.UUID]*entitlement.Counters
	balances map[uuid.UUID]int
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{
		counters: make(map[uuid.UUID]*entitlement.Counters),
		balances: make(map[uuid.UUID]int),
	}
}

func (f *fakeCounterRepo) GetOrCreate(_ context.Context, id uuid.UUID) (*entitlement.Counters, error) {
	c, ok := f.counters[id]
	if !ok {
		c = &entitlement.Counters{AccountID: id, LastReset: time.Now()}
		f.counters[id] = c
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCounterRepo) Reset(_ context.Context, id uuid.UUID, observed time.Time) (bool, error) {
	c, ok := f.counters[id]
	if !ok || !c.LastReset.Equal(observed) {
		return false, nil
	}
	c.Rewarded = 0
	c.Interstitial = 0
	c.LastReset = time.Now()
	return true, nil
}

func (f *fakeCounterRepo) ClaimAndCredit(_ context.Context, id uuid.UUID, kind entitlement.Kind, cap, reward int, _ string) (int, error) {
	c, ok := f.counters[id]
	if !ok {
		c = &entitlement.Counters{AccountID: id, LastReset: time.Now()}
		f.counters[id] = c
	}
	if c.Count(kind) >= cap {
		return 0, entitlement.ErrLimitReached
	}
	if kind == entitlement.KindRewarded {
		c.Rewarded++
	} else {
		c.Interstitial++
	}
	f.balances[id] += reward
	return f.balances[id], nil
}

func newWatchService(t *testing.T, provider Provider) (*Service, *fakeCounterRepo) {
	t.Helper()
	repo := newFakeCounterRepo()
	entSvc, err := entitlement.NewService(repo, config.CreditsConfig{
		InterstitialReward: 10,
		RewardedReward:     20,
		InterstitialDayCap: 5,
		RewardedDayCap:     3,
		Timezone:           "UTC",
	})
	require.NoError(t, err)
	return NewService(provider, entSvc, nil), repo
}

func TestWatchGrantsRewardOnCompletion(t *testing.T) {
	provider := &stubProvider{completed: true}
	svc, repo := newWatchService(t, provider)
	accountID := uuid.New()

	balance, err := svc.Watch(context.Background(), accountID, entitlement.KindRewarded)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
	assert.Equal(t, 1, provider.loads)
	assert.Equal(t, 1, provider.shows)
	assert.Equal(t, 1, repo.counters[accountID].Rewarded)
}

func TestWatchIncompleteAdGrantsNothing(t *testing.T) {
	provider := &stubProvider{completed: false}
	svc, repo := newWatchService(t, provider)
	accountID := uuid.New()

	_, err := svc.Watch(context.Background(), accountID, entitlement.KindInterstitial)
	assert.ErrorIs(t, err, api.ErrAdNotCompleted)
	assert.Zero(t, repo.balances[accountID])
	assert.Zero(t, repo.counters[accountID].Interstitial)
}

func TestWatchDeniedAtCapWithoutPlayingAd(t *testing.T) {
	provider := &stubProvider{completed: true}
	svc, repo := newWatchService(t, provider)
	accountID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Watch(context.Background(), accountID, entitlement.KindRewarded)
		require.NoError(t, err)
	}
	provider.loads = 0
	provider.shows = 0

	_, err := svc.Watch(context.Background(), accountID, entitlement.KindRewarded)
	assert.ErrorIs(t, err, entitlement.ErrLimitReached)
	assert.Zero(t, provider.loads, "ad should not load when the cap is already reached")
	assert.Equal(t, 60, repo.balances[accountID])
}

func TestSimulatedProviderHonorsContext(t *testing.T) {
	provider := NewSimulatedProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := provider.Load(ctx, entitlement.KindRewarded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
