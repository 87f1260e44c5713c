package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpalette/backend/internal/ledger"
)

type fakeRepository struct {
	byID map[uuid.UUID]*Account
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[uuid.UUID]*Account)}
}

func (f *fakeRepository) Create(_ context.Context, a *Account) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	a, err := f.GetByEmail(ctx, email)
	return a != nil, err
}

func (f *fakeRepository) UpdateUsername(_ context.Context, id uuid.UUID, username string) error {
	f.byID[id].Username = username
	return nil
}

func (f *fakeRepository) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	f.byID[id].LastLogin = time.Now()
	return nil
}

func (f *fakeRepository) ApplyCreditDelta(_ context.Context, id uuid.UUID, delta int) (int, error) {
	f.byID[id].Credits += delta
	return f.byID[id].Credits, nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type recordingLedger struct {
	entries []*ledger.Entry
}

func (l *recordingLedger) Create(_ context.Context, e *ledger.Entry) error {
	l.entries = append(l.entries, e)
	return nil
}

type recordingAnnouncer struct {
	events []struct {
		reason  string
		delta   int
		balance int
	}
}

func (a *recordingAnnouncer) TryPublishCredit(_ context.Context, _ uuid.UUID, reason string, delta, balance int) {
	a.events = append(a.events, struct {
		reason  string
		delta   int
		balance int
	}{reason, delta, balance})
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *recordingLedger, *recordingAnnouncer) {
	t.Helper()
	repo := newFakeRepository()
	led := &recordingLedger{}
	ann := &recordingAnnouncer{}
	return NewService(repo, led, ann), repo, led, ann
}

func TestCreateSeedsBalanceAndLedger(t *testing.T) {
	svc, repo, led, ann := newTestService(t)

	account, err := svc.Create(context.Background(), "fox@example.com", "fox", "hash", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, account.Credits)
	assert.Equal(t, 30, repo.byID[account.ID].Credits)

	require.Len(t, led.entries, 1)
	assert.Equal(t, ledger.ReasonRegistrationSeed, led.entries[0].Reason)
	assert.Equal(t, 30, led.entries[0].Delta)
	assert.Equal(t, 30, led.entries[0].BalanceAfter)

	require.Len(t, ann.events, 1)
	assert.Equal(t, 30, ann.events[0].balance)
}

func TestApplyDeltaRoundTrip(t *testing.T) {
	svc, repo, led, ann := newTestService(t)

	account, err := svc.Create(context.Background(), "fox@example.com", "fox", "hash", 0)
	require.NoError(t, err)

	// A reward followed by a spend nets out through relative increments.
	balance, err := svc.ApplyDelta(context.Background(), account.ID, 20, ledger.ReasonAdRewarded)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	balance, err = svc.ApplyDelta(context.Background(), account.ID, -10, ledger.ReasonGenerationSpend)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
	assert.Equal(t, 10, repo.byID[account.ID].Credits)

	// One ledger row per mutation, each carrying the confirmed balance.
	require.Len(t, led.entries, 3)
	assert.Equal(t, ledger.ReasonAdRewarded, led.entries[1].Reason)
	assert.Equal(t, 20, led.entries[1].Delta)
	assert.Equal(t, 20, led.entries[1].BalanceAfter)
	assert.Equal(t, ledger.ReasonGenerationSpend, led.entries[2].Reason)
	assert.Equal(t, -10, led.entries[2].Delta)
	assert.Equal(t, 10, led.entries[2].BalanceAfter)

	// Announcements mirror the ledger one to one.
	require.Len(t, ann.events, 3)
	assert.Equal(t, 10, ann.events[2].balance)
}

func TestApplyDeltaWithoutAnnouncer(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &recordingLedger{}, nil)

	account, err := svc.Create(context.Background(), "fox@example.com", "fox", "hash", 30)
	require.NoError(t, err)

	balance, err := svc.ApplyDelta(context.Background(), account.ID, -10, ledger.ReasonGenerationSpend)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}
