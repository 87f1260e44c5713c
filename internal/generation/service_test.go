package generation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpalette/backend/internal/accounts"
	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/ledger"
)

type fakeAccountsRepo struct {
	byID map[uuid.UUID]*accounts.Account
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{byID: make(map[uuid.UUID]*accounts.Account)}
}

func (f *fakeAccountsRepo) Create(_ context.Context, a *accounts.Account) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAccountsRepo) GetByID(_ context.Context, id uuid.UUID) (*accounts.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountsRepo) GetByEmail(_ context.Context, email string) (*accounts.Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountsRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	a, err := f.GetByEmail(ctx, email)
	return a != nil, err
}

func (f *fakeAccountsRepo) UpdateUsername(_ context.Context, id uuid.UUID, username string) error {
	f.byID[id].Username = username
	return nil
}

func (f *fakeAccountsRepo) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	f.byID[id].LastLogin = time.Now()
	return nil
}

func (f *fakeAccountsRepo) ApplyCreditDelta(_ context.Context, id uuid.UUID, delta int) (int, error) {
	f.byID[id].Credits += delta
	return f.byID[id].Credits, nil
}

func (f *fakeAccountsRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type noopLedger struct{}

func (noopLedger) Create(context.Context, *ledger.Entry) error { return nil }

type testEnv struct {
	svc      *Service
	repo     *fakeAccountsRepo
	upstream *httptest.Server
	hits     *int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	repo := newFakeAccountsRepo()
	accountsSvc := accounts.NewService(repo, noopLedger{}, nil)

	client := NewClient(config.GenerationConfig{EndpointURL: upstream.URL, Timeout: 5 * time.Second})
	svc := NewService(client, accountsSvc, NewFreeUseStore(redisClient),
		config.CreditsConfig{GenerationCost: 10, Timezone: "UTC"},
		config.AdsConfig{InterstitialChance: 0.5},
	)
	return &testEnv{svc: svc, repo: repo, upstream: upstream, hits: &hits}
}

func (e *testEnv) addAccount(credits int) uuid.UUID {
	id := uuid.New()
	e.repo.byID[id] = &accounts.Account{ID: id, Email: "fox@example.com", Credits: credits}
	return id
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(context.Background(), Caller{DeviceID: "dev-1"}, &Request{Prompt: "   "})
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Zero(t, *env.hits)
}

func TestGenerateRejectsUnknownModel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(context.Background(), Caller{DeviceID: "dev-1"},
		&Request{Prompt: "a red fox", Model: "dall-e"})
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestAnonymousGetsOneFreeGeneration(t *testing.T) {
	env := newTestEnv(t)
	caller := Caller{DeviceID: "device-abc"}

	result, err := env.svc.Generate(context.Background(), caller, &Request{Prompt: "a red fox"})
	require.NoError(t, err)
	assert.True(t, result.FreeGeneration)
	assert.Equal(t, []byte("jpegbytes"), result.Image.Data)

	// Second attempt from the same device is pushed to log in.
	_, err = env.svc.Generate(context.Background(), caller, &Request{Prompt: "another fox"})
	assert.ErrorIs(t, err, api.ErrLoginRequired)
	assert.Equal(t, 1, *env.hits)

	// A different device still has its free render.
	_, err = env.svc.Generate(context.Background(), Caller{DeviceID: "device-xyz"}, &Request{Prompt: "a fox"})
	assert.NoError(t, err)
}

func TestAnonymousRequiresDeviceID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(context.Background(), Caller{}, &Request{Prompt: "a red fox"})
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestAuthenticatedGenerationDebitsCost(t *testing.T) {
	env := newTestEnv(t)
	id := env.addAccount(30)

	result, err := env.svc.Generate(context.Background(), Caller{AccountID: &id}, &Request{Prompt: "a red fox"})
	require.NoError(t, err)
	assert.False(t, result.FreeGeneration)
	assert.Equal(t, 20, result.Credits)
	assert.Equal(t, 20, env.repo.byID[id].Credits)
}

func TestAuthenticatedExactBalanceGenerates(t *testing.T) {
	env := newTestEnv(t)
	id := env.addAccount(10)

	result, err := env.svc.Generate(context.Background(), Caller{AccountID: &id}, &Request{Prompt: "a red fox"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Credits)
	assert.Equal(t, 0, env.repo.byID[id].Credits)
}

func TestAuthenticatedInsufficientCreditsDenied(t *testing.T) {
	env := newTestEnv(t)
	id := env.addAccount(9)

	_, err := env.svc.Generate(context.Background(), Caller{AccountID: &id}, &Request{Prompt: "a red fox"})
	assert.ErrorIs(t, err, api.ErrInsufficientCredits)
	assert.Zero(t, *env.hits, "upstream should not be called when the balance gate denies")
	assert.Equal(t, 9, env.repo.byID[id].Credits)
}

func TestUpstreamFailureDoesNotDebit(t *testing.T) {
	env := newTestEnv(t)
	id := env.addAccount(30)
	env.upstream.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := env.svc.Generate(context.Background(), Caller{AccountID: &id}, &Request{Prompt: "a red fox"})
	require.Error(t, err)
	assert.Equal(t, 30, env.repo.byID[id].Credits)
}

func TestInterstitialChance(t *testing.T) {
	env := newTestEnv(t)
	id := env.addAccount(100)

	env.svc.randFloat = func() float64 { return 0.1 }
	result, err := env.svc.Generate(context.Background(), Caller{AccountID: &id}, &Request{Prompt: "a red fox"})
	require.NoError(t, err)
	assert.True(t, result.ShowInterstitial)

	env.svc.randFloat = func() float64 { return 0.9 }
	result, err = env.svc.Generate(context.Background(), Caller{AccountID: &id}, &Request{Prompt: "a red fox"})
	require.NoError(t, err)
	assert.False(t, result.ShowInterstitial)
}
