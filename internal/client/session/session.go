package session

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/maati-dev/maati/internal/client/storage"
	"github.com/maati-dev/maati/pkg/api"
)

// Store keys. They match the keys the web dashboard keeps in browser local
// storage, so a session rehydrated from an exported store stays compatible.
const (
	keyUser         = "user"
	keyVillageID    = "villageId"
	keyVillage      = "village"
	keyVillageName  = "villageName"
	keyToken        = "token"
	keyTokenExpiry  = "tokenExpiry" // decimal ms since epoch
	keyRefreshToken = "refreshToken"
)

// DefaultTokenTTL is the fallback token lifetime applied when the server
// provides neither a duration nor an absolute expiry. The value is an
// operational guess, not a server contract, hence configurable via
// WithDefaultTTL.
const DefaultTokenTTL = 15 * time.Minute

// Session holds the authenticated user, tokens and selected village for one
// running client. It persists every tracked field to a Store, mirrors
// changes made by other instances sharing that store, and enforces token
// expiry with a single passive deadline timer. There is no background
// refresh: Refresh runs only when called.
type Session struct {
	store      storage.Store
	httpc      *http.Client
	logger     *slog.Logger
	sched      Scheduler
	now        func() time.Time
	onTick     func(remainingSeconds int64)
	refreshURL string
	defaultTTL time.Duration

	mu           sync.Mutex
	user         *api.UserInfo
	accessToken  string
	refreshToken string
	expiresAt    int64 // ms since epoch; 0 when unset
	villageID    string
	village      json.RawMessage
	villageName  string
	cancelTimer  func()
	tickStop     chan struct{}

	group     singleflight.Group
	changes   chan storage.KeyChange
	unsub     func()
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithRefreshURL sets the absolute URL of the token refresh endpoint.
func WithRefreshURL(url string) Option {
	return func(s *Session) { s.refreshURL = url }
}

// WithHTTPClient replaces the default HTTP client (30s timeout, cookie jar).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.httpc = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithScheduler replaces the deadline timer implementation.
func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDefaultTTL overrides the fallback token lifetime.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Session) { s.defaultTTL = ttl }
}

// WithTickHandler installs a callback invoked once per second with the
// remaining token lifetime while an expiry is set.
func WithTickHandler(fn func(remainingSeconds int64)) Option {
	return func(s *Session) { s.onTick = fn }
}

// New creates an empty session backed by store. When store also implements
// storage.Notifier the session subscribes to it and mirrors changes made by
// other instances. Call Load to rehydrate persisted state, and Close when
// the session is no longer needed.
func New(store storage.Store, opts ...Option) *Session {
	s := &Session{
		store:      store,
		logger:     slog.Default(),
		sched:      NewScheduler(),
		now:        time.Now,
		defaultTTL: DefaultTokenTTL,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpc == nil {
		jar, _ := cookiejar.New(nil)
		s.httpc = &http.Client{Timeout: 30 * time.Second, Jar: jar}
	}

	if notifier, ok := store.(storage.Notifier); ok && notifier != nil {
		s.changes = make(chan storage.KeyChange, 16)
		s.unsub = notifier.Subscribe(func(c storage.KeyChange) {
			select {
			case s.changes <- c:
			case <-s.done:
			}
		})
		go s.watchLoop()
	}
	return s
}

// Close releases the store subscription and any pending timers.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.unsub != nil {
			s.unsub()
		}
		close(s.done)

		s.mu.Lock()
		s.cancelTimerLocked()
		s.stopTickLocked()
		s.mu.Unlock()
	})
}

// Load rehydrates session state from the store. Malformed or missing
// entries are treated as absent; Load never fails.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw := s.read(ctx, keyUser); raw != nil {
		var u api.UserInfo
		if err := json.Unmarshal(raw, &u); err == nil && u.Name != "" {
			s.user = &u
		}
	}
	if raw := s.read(ctx, keyVillageID); raw != nil {
		s.villageID = string(raw)
	}
	if raw := s.read(ctx, keyVillage); raw != nil {
		if _, _, ok := normalizeVillage(raw); ok {
			s.village = append(json.RawMessage(nil), raw...)
		}
	}
	if raw := s.read(ctx, keyVillageName); raw != nil {
		s.villageName = string(raw)
	}
	if raw := s.read(ctx, keyToken); raw != nil {
		s.accessToken = string(raw)
	}
	if raw := s.read(ctx, keyRefreshToken); raw != nil {
		s.refreshToken = string(raw)
	}
	if raw := s.read(ctx, keyTokenExpiry); raw != nil {
		if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			s.expiresAt = ms
		}
	}

	// No dangling expiry without a token.
	if s.accessToken == "" {
		s.expiresAt = 0
	}
	s.rearmLocked(ctx)
}

// LoginData is the payload accepted by Login. Only the fields the server
// actually returned are set; Token may be empty for cookie-based sessions.
type LoginData struct {
	User         *api.UserInfo
	Village      json.RawMessage
	Token        string
	RefreshToken string
	ExpiresIn    int64 // seconds
	ExpiresAt    int64 // ms since epoch
}

// Login adopts the result of a successful credential exchange. Identity is
// persisted immediately; token and expiry only when a token was supplied.
// Login never chains into Refresh.
func (s *Session) Login(ctx context.Context, data LoginData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data.User != nil {
		u := *data.User
		s.user = &u
		s.persistJSON(ctx, keyUser, &u)
	}
	if data.Token != "" {
		s.accessToken = data.Token
		s.persist(ctx, keyToken, []byte(data.Token))
		s.setExpiryLocked(ctx, s.resolveExpiry(data.ExpiresIn, data.ExpiresAt))
	}
	if data.RefreshToken != "" {
		s.refreshToken = data.RefreshToken
		s.persist(ctx, keyRefreshToken, []byte(data.RefreshToken))
	}
	if len(data.Village) > 0 {
		s.adoptVillageLocked(ctx, data.Village)
	}
}

// Logout clears every session field, cancels the expiry timer and removes
// all store keys. It is idempotent.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

// Refresh exchanges the stored credentials for a new token at the refresh
// endpoint. On success the session is updated and true is returned; on any
// failure the prior state is left fully intact and false is returned.
// Concurrent calls are collapsed into a single network request.
func (s *Session) Refresh(ctx context.Context) bool {
	ok, _, _ := s.group.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx), nil
	})
	return ok.(bool)
}

// ForceRefresh is Refresh followed by a full logout when the refresh fails.
func (s *Session) ForceRefresh(ctx context.Context) bool {
	if s.Refresh(ctx) {
		return true
	}
	s.Logout(ctx)
	return false
}

// HandleExternalChange applies a change made by another session instance
// sharing the store. State is updated in memory only; the originating
// instance already persisted the value.
func (s *Session) HandleExternalChange(key string, newValue []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	switch key {
	case keyUser:
		s.user = nil
		if len(newValue) > 0 {
			var u api.UserInfo
			if err := json.Unmarshal(newValue, &u); err == nil && u.Name != "" {
				s.user = &u
			}
		}
	case keyVillageID:
		s.villageID = string(newValue)
	case keyVillageName:
		s.villageName = string(newValue)
	case keyVillage:
		s.village = nil
		if len(newValue) > 0 {
			if id, name, ok := normalizeVillage(newValue); ok {
				s.village = append(json.RawMessage(nil), newValue...)
				if id != "" {
					s.villageID = id
				}
				if name != "" {
					s.villageName = name
				}
			}
		}
	case keyToken:
		s.accessToken = string(newValue)
		if s.accessToken == "" {
			s.expiresAt = 0
			s.cancelTimerLocked()
			s.stopTickLocked()
		}
	case keyRefreshToken:
		s.refreshToken = string(newValue)
	case keyTokenExpiry:
		ms, err := strconv.ParseInt(string(newValue), 10, 64)
		if err != nil || len(newValue) == 0 {
			s.expiresAt = 0
			s.cancelTimerLocked()
			s.stopTickLocked()
			return
		}
		s.expiresAt = ms
		s.rearmLocked(ctx)
	}
}

// User returns a copy of the identity, or nil when logged out.
func (s *Session) User() *api.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current access token ("" when absent).
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the stored refresh token ("" when absent).
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// ExpiresAt returns the absolute token expiry in ms since epoch, 0 if unset.
func (s *Session) ExpiresAt() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Remaining returns the seconds until token expiry, floored at zero.
// ok is false when no expiry is set.
func (s *Session) Remaining() (seconds int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

// VillageID returns the selected village id.
func (s *Session) VillageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.villageID
}

// VillageName returns the derived display name of the selected village.
func (s *Session) VillageName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.villageName
}

// Village returns the raw selected village record, or nil.
func (s *Session) Village() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.village == nil {
		return nil
	}
	return append(json.RawMessage(nil), s.village...)
}

// SetVillage selects a village record, persisting it and the derived id
// and display name.
func (s *Session) SetVillage(ctx context.Context, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adoptVillageLocked(ctx, raw)
}

// Authenticated reports whether an identity or token is present.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil || s.accessToken != ""
}

func (s *Session) remainingLocked() (int64, bool) {
	if s.expiresAt == 0 {
		return 0, false
	}
	ms := s.expiresAt - s.now().UnixMilli()
	if ms <= 0 {
		return 0, true
	}
	// Round up so a freshly armed 900s expiry reads as 900, not 899.
	return (ms + 999) / 1000, true
}

// resolveExpiry computes the absolute expiry: an explicit duration wins
// over an explicit timestamp, which wins over the fallback TTL.
func (s *Session) resolveExpiry(expiresInSeconds, expiresAtMs int64) int64 {
	switch {
	case expiresInSeconds > 0:
		return s.now().UnixMilli() + expiresInSeconds*1000
	case expiresAtMs > 0:
		return expiresAtMs
	default:
		return s.now().Add(s.defaultTTL).UnixMilli()
	}
}

// setExpiryLocked replaces the expiry and the deadline timer. An expiry
// already in the past logs the session out immediately.
func (s *Session) setExpiryLocked(ctx context.Context, ms int64) {
	s.cancelTimerLocked()
	s.expiresAt = ms
	s.persist(ctx, keyTokenExpiry, []byte(strconv.FormatInt(ms, 10)))
	s.rearmLocked(ctx)
}

// rearmLocked arms the single deadline timer for the current expiry, firing
// an immediate logout when the deadline has already passed. The timer is
// armed only while a token is held.
func (s *Session) rearmLocked(ctx context.Context) {
	s.cancelTimerLocked()
	if s.expiresAt == 0 || s.accessToken == "" {
		s.stopTickLocked()
		return
	}

	until := time.Duration(s.expiresAt-s.now().UnixMilli()) * time.Millisecond
	if until <= 0 {
		s.logger.Info("session token already expired, logging out")
		s.logoutLocked(ctx)
		return
	}

	s.cancelTimer = s.sched.ScheduleOnce(until, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.logger.Info("session token expired, logging out")
		s.logoutLocked(context.Background())
	})
	s.startTickLocked()
}

func (s *Session) cancelTimerLocked() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
}

func (s *Session) logoutLocked(ctx context.Context) {
	s.cancelTimerLocked()
	s.stopTickLocked()

	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = 0
	s.villageID = ""
	s.village = nil
	s.villageName = ""

	for _, key := range []string{
		keyUser, keyVillageID, keyVillage, keyVillageName,
		keyToken, keyTokenExpiry, keyRefreshToken,
	} {
		s.persist(ctx, key, nil)
	}
}

func (s *Session) adoptVillageLocked(ctx context.Context, raw json.RawMessage) {
	id, name, ok := normalizeVillage(raw)
	if !ok {
		return
	}
	s.village = append(json.RawMessage(nil), raw...)
	s.persist(ctx, keyVillage, s.village)
	if id != "" {
		s.villageID = id
		s.persist(ctx, keyVillageID, []byte(id))
	}
	if name != "" {
		s.villageName = name
		s.persist(ctx, keyVillageName, []byte(name))
	}
}

// doRefresh performs the actual refresh exchange. It mutates session state
// only after the full response has been validated.
func (s *Session) doRefresh(ctx context.Context) bool {
	if s.refreshURL == "" {
		return false
	}

	s.mu.Lock()
	token := s.accessToken
	refreshToken := s.refreshToken
	s.mu.Unlock()

	body := []byte("{}")
	if refreshToken != "" {
		var err error
		body, err = json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.refreshURL, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		s.logger.Debug("token refresh request failed", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Debug("token refresh rejected", "status", resp.StatusCode)
		return false
	}

	payload, err := readAll(resp)
	if err != nil {
		return false
	}
	result, ok := decodeAuthResult(payload)
	if !ok {
		s.logger.Debug("token refresh returned malformed payload")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = result.Token
	s.persist(ctx, keyToken, []byte(result.Token))
	if result.RefreshToken != "" {
		s.refreshToken = result.RefreshToken
		s.persist(ctx, keyRefreshToken, []byte(result.RefreshToken))
	}
	if result.User != nil {
		u := *result.User
		s.user = &u
		s.persistJSON(ctx, keyUser, &u)
	}
	if len(result.Village) > 0 {
		s.adoptVillageLocked(ctx, result.Village)
	}
	s.setExpiryLocked(ctx, s.resolveExpiry(result.ExpiresIn, result.ExpiresAt))
	return true
}

// decodeAuthResult accepts both the {error,message,result:{...}} envelope
// and a bare auth object. A result without a token is malformed.
func decodeAuthResult(payload []byte) (*api.AuthResult, bool) {
	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(payload, &env); err == nil && len(env.Result) > 0 && env.Result[0] == '{' {
		var result api.AuthResult
		if err := json.Unmarshal(env.Result, &result); err == nil && result.Token != "" {
			return &result, true
		}
	}

	var result api.AuthResult
	if err := json.Unmarshal(payload, &result); err == nil && result.Token != "" {
		return &result, true
	}
	return nil, false
}

func readAll(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	return buf.Bytes(), err
}

func (s *Session) watchLoop() {
	for {
		select {
		case c := <-s.changes:
			s.HandleExternalChange(c.Key, c.New)
		case <-s.done:
			return
		}
	}
}

func (s *Session) startTickLocked() {
	if s.onTick == nil || s.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	s.tickStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				remaining, ok := s.Remaining()
				if !ok {
					return
				}
				s.onTick(remaining)
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) stopTickLocked() {
	if s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
}

// read returns the stored value for key or nil, swallowing storage errors.
func (s *Session) read(ctx context.Context, key string) []byte {
	if s.store == nil {
		return nil
	}
	value, err := s.store.Get(ctx, key)
	if err != nil {
		return nil
	}
	return value
}

// persist writes (or, for empty values, deletes) a store key. Storage is
// best-effort: failures are logged and ignored so the session never crashes
// on a storage fault.
func (s *Session) persist(ctx context.Context, key string, value []byte) {
	if s.store == nil {
		return
	}
	var err error
	if len(value) == 0 {
		err = s.store.Delete(ctx, key)
	} else {
		err = s.store.Set(ctx, key, value)
	}
	if err != nil {
		s.logger.Debug("session store write failed", "key", key, "error", err)
	}
}

func (s *Session) persistJSON(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Debug("session store marshal failed", "key", key, "error", err)
		return
	}
	s.persist(ctx, key, data)
}
