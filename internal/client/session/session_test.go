package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maati-dev/maati/internal/client/storage"
	"github.com/maati-dev/maati/pkg/api"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// manualScheduler records scheduled timers and fires them on demand.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d         time.Duration
	fn        func()
	cancelled bool
}

func (m *manualScheduler) ScheduleOnce(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer := &manualTimer{d: d, fn: fn}
	m.timers = append(m.timers, timer)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		timer.cancelled = true
	}
}

// active returns the number of armed, not yet cancelled timers.
func (m *manualScheduler) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// fireLast invokes the most recently armed active timer.
func (m *manualScheduler) fireLast() {
	m.mu.Lock()
	var fn func()
	for i := len(m.timers) - 1; i >= 0; i-- {
		if !m.timers[i].cancelled {
			fn = m.timers[i].fn
			m.timers[i].cancelled = true
			break
		}
	}
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// plainStore is a Store without change notifications, so tests that count
// timers are not disturbed by the session observing its own writes.
type plainStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newPlainStore() *plainStore {
	return &plainStore{values: make(map[string][]byte)}
}

func (p *plainStore) Get(ctx context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	value, ok := p.values[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (p *plainStore) Set(ctx context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = append([]byte(nil), value...)
	return nil
}

func (p *plainStore) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
	return nil
}

func (p *plainStore) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

type testSession struct {
	*Session
	clock *fakeClock
	sched *manualScheduler
	store *plainStore
}

func newTestSession(t *testing.T, opts ...Option) *testSession {
	t.Helper()
	clock := newFakeClock()
	sched := &manualScheduler{}
	store := newPlainStore()

	all := append([]Option{
		WithClock(clock.Now),
		WithScheduler(sched),
	}, opts...)
	s := New(store, all...)
	t.Cleanup(s.Close)

	return &testSession{Session: s, clock: clock, sched: sched, store: store}
}

func testUser() *api.UserInfo {
	return &api.UserInfo{UserID: "EMP001", Name: "Asha Meena", Role: "admin"}
}

func TestLoginPersistsAndArmsTimer(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	ts.Login(ctx, LoginData{
		User:         testUser(),
		Token:        "tok-1",
		RefreshToken: "ref-1",
		ExpiresIn:    600,
		Village:      json.RawMessage(`{"villageId":"V001","villageName":"Rampur"}`),
	})

	assert.Equal(t, "tok-1", ts.Token())
	assert.Equal(t, "ref-1", ts.RefreshToken())
	require.NotNil(t, ts.User())
	assert.Equal(t, "Asha Meena", ts.User().Name)
	assert.Equal(t, "V001", ts.VillageID())
	assert.Equal(t, "Rampur", ts.VillageName())

	wantExpiry := ts.clock.Now().UnixMilli() + 600_000
	assert.Equal(t, wantExpiry, ts.ExpiresAt())

	remaining, ok := ts.Remaining()
	require.True(t, ok)
	assert.Equal(t, int64(600), remaining)
	assert.Equal(t, 1, ts.sched.active())

	for _, key := range []string{keyUser, keyToken, keyTokenExpiry, keyRefreshToken, keyVillageID, keyVillage, keyVillageName} {
		_, err := ts.store.Get(ctx, key)
		assert.NoError(t, err, "key %s should be persisted", key)
	}
}

func TestLoginWithoutTokenLeavesExpiryUnset(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	ts.Login(ctx, LoginData{User: testUser()})

	assert.True(t, ts.Authenticated())
	assert.Empty(t, ts.Token())
	assert.Zero(t, ts.ExpiresAt())
	_, ok := ts.Remaining()
	assert.False(t, ok)
	assert.Equal(t, 0, ts.sched.active())

	_, err := ts.store.Get(ctx, keyTokenExpiry)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestLoginDefaultExpiryFallback(t *testing.T) {
	ts := newTestSession(t)

	ts.Login(context.Background(), LoginData{Token: "tok-1"})

	remaining, ok := ts.Remaining()
	require.True(t, ok)
	assert.Equal(t, int64(900), remaining)
	assert.Equal(t, ts.clock.Now().Add(15*time.Minute).UnixMilli(), ts.ExpiresAt())
}

func TestLoginExpiresInWinsOverExpiresAt(t *testing.T) {
	ts := newTestSession(t)
	nowMs := ts.clock.Now().UnixMilli()

	ts.Login(context.Background(), LoginData{
		Token:     "tok-1",
		ExpiresIn: 120,
		ExpiresAt: nowMs + 3_600_000,
	})

	assert.Equal(t, nowMs+120_000, ts.ExpiresAt())
}

func TestLoginWithPastExpiryLogsOutImmediately(t *testing.T) {
	ts := newTestSession(t)

	ts.Login(context.Background(), LoginData{
		User:      testUser(),
		Token:     "tok-1",
		ExpiresAt: ts.clock.Now().UnixMilli() - 1000,
	})

	assert.False(t, ts.Authenticated())
	assert.Empty(t, ts.Token())
	assert.Zero(t, ts.ExpiresAt())
	assert.Equal(t, 0, ts.sched.active())
	assert.Equal(t, 0, ts.store.len())
}

func TestReloginReplacesTimer(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	ts.Login(ctx, LoginData{Token: "tok-1", ExpiresIn: 600})
	ts.Login(ctx, LoginData{Token: "tok-2", ExpiresIn: 1200})

	assert.Equal(t, "tok-2", ts.Token())
	assert.Equal(t, 1, ts.sched.active())

	remaining, ok := ts.Remaining()
	require.True(t, ok)
	assert.Equal(t, int64(1200), remaining)
}

func TestExpiryTimerLogsOut(t *testing.T) {
	ts := newTestSession(t)

	ts.Login(context.Background(), LoginData{User: testUser(), Token: "tok-1", ExpiresIn: 60})
	ts.clock.Advance(61 * time.Second)
	ts.sched.fireLast()

	assert.False(t, ts.Authenticated())
	assert.Empty(t, ts.Token())
	assert.Nil(t, ts.User())
	assert.Equal(t, 0, ts.store.len())
}

func TestLoadRehydrates(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	seed := map[string]string{
		keyUser:         `{"name":"Asha Meena","role":"admin"}`,
		keyToken:        "tok-1",
		keyRefreshToken: "ref-1",
		keyTokenExpiry:  "1700000300000",
		keyVillageID:    "V001",
		keyVillage:      `{"villageId":"V001","name":"Rampur"}`,
		keyVillageName:  "Rampur",
	}
	for key, value := range seed {
		require.NoError(t, ts.store.Set(ctx, key, []byte(value)))
	}

	ts.Load(ctx)

	assert.Equal(t, "tok-1", ts.Token())
	assert.Equal(t, "ref-1", ts.RefreshToken())
	require.NotNil(t, ts.User())
	assert.Equal(t, "admin", ts.User().Role)
	assert.Equal(t, "V001", ts.VillageID())
	assert.Equal(t, "Rampur", ts.VillageName())
	assert.Equal(t, int64(1_700_000_300_000), ts.ExpiresAt())
	assert.Equal(t, 1, ts.sched.active())
}

func TestLoadMalformedEntriesTreatedAsAbsent(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, ts.store.Set(ctx, keyUser, []byte(`{not json`)))
	require.NoError(t, ts.store.Set(ctx, keyToken, []byte("tok-1")))
	require.NoError(t, ts.store.Set(ctx, keyTokenExpiry, []byte("not-a-number")))

	ts.Load(ctx)

	assert.Nil(t, ts.User())
	assert.Equal(t, "tok-1", ts.Token())
	assert.Zero(t, ts.ExpiresAt())
	assert.Equal(t, 0, ts.sched.active())
}

func TestLoadDropsExpiryWithoutToken(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, ts.store.Set(ctx, keyTokenExpiry, []byte("1700000900000")))

	ts.Load(ctx)

	assert.Zero(t, ts.ExpiresAt())
	_, ok := ts.Remaining()
	assert.False(t, ok)
	assert.Equal(t, 0, ts.sched.active())
}

func TestLogoutIdempotent(t *testing.T) {
	ts := newTestSession(t)
	ctx := context.Background()

	ts.Login(ctx, LoginData{
		User:      testUser(),
		Token:     "tok-1",
		ExpiresIn: 600,
		Village:   json.RawMessage(`{"villageId":"V001","name":"Rampur"}`),
	})

	ts.Logout(ctx)
	ts.Logout(ctx)

	assert.False(t, ts.Authenticated())
	assert.Nil(t, ts.User())
	assert.Empty(t, ts.Token())
	assert.Empty(t, ts.RefreshToken())
	assert.Empty(t, ts.VillageID())
	assert.Empty(t, ts.VillageName())
	assert.Nil(t, ts.Village())
	assert.Zero(t, ts.ExpiresAt())
	assert.Equal(t, 0, ts.sched.active())
	assert.Equal(t, 0, ts.store.len())
}

func TestRemainingRoundsUpAndFloorsAtZero(t *testing.T) {
	ts := newTestSession(t)

	ts.Login(context.Background(), LoginData{Token: "tok-1", ExpiresIn: 600})

	ts.clock.Advance(598*time.Second + 500*time.Millisecond)
	remaining, ok := ts.Remaining()
	require.True(t, ok)
	assert.Equal(t, int64(2), remaining)

	ts.clock.Advance(5 * time.Second)
	remaining, ok = ts.Remaining()
	require.True(t, ok)
	assert.Zero(t, remaining)
}

func TestHandleExternalChange(t *testing.T) {
	ts := newTestSession(t)

	ts.HandleExternalChange(keyToken, []byte("tok-ext"))
	ts.HandleExternalChange(keyTokenExpiry, []byte("1700000600000"))
	ts.HandleExternalChange(keyUser, []byte(`{"name":"Ravi Bhil","role":"surveyor"}`))
	ts.HandleExternalChange(keyVillage, []byte(`{"id":"V7","title":"Khairwara"}`))

	assert.Equal(t, "tok-ext", ts.Token())
	assert.Equal(t, int64(1_700_000_600_000), ts.ExpiresAt())
	require.NotNil(t, ts.User())
	assert.Equal(t, "Ravi Bhil", ts.User().Name)
	assert.Equal(t, "V7", ts.VillageID())
	assert.Equal(t, "Khairwara", ts.VillageName())
	assert.Equal(t, 1, ts.sched.active())

	// External changes are mirrored in memory only.
	assert.Equal(t, 0, ts.store.len())

	// Token removal drops the expiry with it.
	ts.HandleExternalChange(keyToken, nil)
	assert.Empty(t, ts.Token())
	assert.Zero(t, ts.ExpiresAt())
	assert.Equal(t, 0, ts.sched.active())
}

func TestHandleExternalChangePastExpiryLogsOut(t *testing.T) {
	ts := newTestSession(t)

	ts.Login(context.Background(), LoginData{User: testUser(), Token: "tok-1", ExpiresIn: 600})
	ts.HandleExternalChange(keyTokenExpiry, []byte("1699999999000"))

	assert.False(t, ts.Authenticated())
	assert.Empty(t, ts.Token())
	assert.Zero(t, ts.ExpiresAt())
}

func TestCrossInstanceSync(t *testing.T) {
	shared := storage.NewMemoryStore()
	clock := newFakeClock()

	a := New(shared, WithClock(clock.Now), WithScheduler(&manualScheduler{}))
	defer a.Close()
	b := New(shared, WithClock(clock.Now), WithScheduler(&manualScheduler{}))
	defer b.Close()

	a.Login(context.Background(), LoginData{
		User:      testUser(),
		Token:     "tok-1",
		ExpiresIn: 600,
		Village:   json.RawMessage(`{"villageId":"V001","name":"Rampur"}`),
	})

	assert.Eventually(t, func() bool {
		return b.Token() == "tok-1" && b.VillageID() == "V001" && b.User() != nil
	}, 2*time.Second, 10*time.Millisecond, "peer session should observe the login")
	assert.Equal(t, a.ExpiresAt(), b.ExpiresAt())

	a.Logout(context.Background())

	assert.Eventually(t, func() bool {
		return b.Token() == "" && b.User() == nil && b.ExpiresAt() == 0
	}, 2*time.Second, 10*time.Millisecond, "peer session should observe the logout")
}

func refreshServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRefreshSuccess(t *testing.T) {
	var gotAuth string
	var gotBody api.RefreshRequest

	srv := refreshServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":false,"message":"token refreshed","result":{"token":"tok-2","refreshToken":"ref-2","expiresIn":300}}`))
	})

	ts := newTestSession(t, WithRefreshURL(srv.URL))
	ctx := context.Background()
	ts.Login(ctx, LoginData{User: testUser(), Token: "tok-1", RefreshToken: "ref-1", ExpiresIn: 600})

	require.True(t, ts.Refresh(ctx))

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "ref-1", gotBody.RefreshToken)
	assert.Equal(t, "tok-2", ts.Token())
	assert.Equal(t, "ref-2", ts.RefreshToken())
	assert.Equal(t, ts.clock.Now().UnixMilli()+300_000, ts.ExpiresAt())
	assert.Equal(t, 1, ts.sched.active())

	stored, err := ts.store.Get(ctx, keyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", string(stored))
}

func TestRefreshFailureLeavesStateIntact(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":true,"message":"token expired"}`))
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":false,"result":{}}`))
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>gateway error</html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := refreshServer(t, tt.handler)
			ts := newTestSession(t, WithRefreshURL(srv.URL))
			ctx := context.Background()
			ts.Login(ctx, LoginData{User: testUser(), Token: "tok-1", RefreshToken: "ref-1", ExpiresIn: 600})
			wantExpiry := ts.ExpiresAt()

			assert.False(t, ts.Refresh(ctx))

			assert.Equal(t, "tok-1", ts.Token())
			assert.Equal(t, "ref-1", ts.RefreshToken())
			assert.Equal(t, wantExpiry, ts.ExpiresAt())
			require.NotNil(t, ts.User())
			assert.Equal(t, 1, ts.sched.active())
		})
	}
}

func TestRefreshWithoutEndpointFails(t *testing.T) {
	ts := newTestSession(t)
	ts.Login(context.Background(), LoginData{Token: "tok-1", ExpiresIn: 600})

	assert.False(t, ts.Refresh(context.Background()))
	assert.Equal(t, "tok-1", ts.Token())
}

func TestForceRefreshLogsOutOnFailure(t *testing.T) {
	srv := refreshServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ts := newTestSession(t, WithRefreshURL(srv.URL))
	ctx := context.Background()
	ts.Login(ctx, LoginData{User: testUser(), Token: "tok-1", ExpiresIn: 600})

	assert.False(t, ts.ForceRefresh(ctx))
	assert.False(t, ts.Authenticated())
	assert.Equal(t, 0, ts.store.len())
}

func TestConcurrentRefreshCollapses(t *testing.T) {
	var requests atomic.Int64
	release := make(chan struct{})

	srv := refreshServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"error":false,"result":{"token":"tok-2","expiresIn":300}}`))
	})

	ts := newTestSession(t, WithRefreshURL(srv.URL))
	ctx := context.Background()
	ts.Login(ctx, LoginData{Token: "tok-1", RefreshToken: "ref-1", ExpiresIn: 600})

	const callers = 5
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		go func() { results <- ts.Refresh(ctx) }()
	}

	// Let every caller join the in-flight request before releasing it.
	time.Sleep(100 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		assert.True(t, <-results)
	}
	assert.Equal(t, int64(1), requests.Load())
	assert.Equal(t, "tok-2", ts.Token())
}
