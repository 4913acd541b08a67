package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"theralink/config"
	"theralink/internal/domain/entity"
	"theralink/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokenStore struct {
	tokens map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]bool)}
}

func (s *memTokenStore) key(userID uuid.UUID, tokenType jwt.TokenType, tokenID string) string {
	return string(tokenType) + ":" + userID.String() + ":" + tokenID
}

func (s *memTokenStore) Store(_ context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, _ time.Duration) error {
	s.tokens[s.key(userID, tokenType, tokenID)] = true
	return nil
}

func (s *memTokenStore) Exists(_ context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	return s.tokens[s.key(userID, tokenType, tokenID)], nil
}

func (s *memTokenStore) Revoke(_ context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	delete(s.tokens, s.key(userID, tokenType, tokenID))
	return nil
}

func (s *memTokenStore) RevokeAll(_ context.Context, _ uuid.UUID) error {
	s.tokens = make(map[string]bool)
	return nil
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "middleware-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

// echoIdentity reports what the auth middleware put on the context.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	roleID, _ := GetRoleIDFromContext(r.Context())
	w.Header().Set("X-User", userID.String())
	w.Header().Set("X-Role", entity.RoleNameByID(roleID))
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthenticateAcceptsAllowListedAccessToken(t *testing.T) {
	svc := newJWT()
	store := newMemTokenStore()
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "ada@example.com", entity.RoleIDClient)
	require.NoError(t, err)
	require.NoError(t, store.Store(context.Background(), userID, jwt.AccessToken, tokenID, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	NewAuthMiddleware(svc, store).Authenticate(echoIdentity).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID.String(), rec.Header().Get("X-User"))
	assert.Equal(t, entity.RoleClient, rec.Header().Get("X-Role"))
}

func TestAuthenticateAcceptsQueryToken(t *testing.T) {
	svc := newJWT()
	store := newMemTokenStore()
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "ada@example.com", entity.RoleIDTherapist)
	require.NoError(t, err)
	require.NoError(t, store.Store(context.Background(), userID, jwt.AccessToken, tokenID, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/notifications/stream?access_token="+token, nil)
	rec := httptest.NewRecorder()

	NewAuthMiddleware(svc, store).Authenticate(echoIdentity).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticateRejections(t *testing.T) {
	svc := newJWT()
	store := newMemTokenStore()
	userID := uuid.New()

	revoked, _, err := svc.GenerateAccessToken(userID, "ada@example.com", entity.RoleIDClient)
	require.NoError(t, err)

	refresh, refreshID, err := svc.GenerateRefreshToken(userID, "ada@example.com", entity.RoleIDClient)
	require.NoError(t, err)
	require.NoError(t, store.Store(context.Background(), userID, jwt.RefreshToken, refreshID, time.Hour))

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Token abc",
		"garbage token":   "Bearer not-a-jwt",
		"refresh token":   "Bearer " + refresh,
		"revoked (unset)": "Bearer " + revoked,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()

			NewAuthMiddleware(svc, store).Authenticate(echoIdentity).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func withRole(roleID int) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims := &jwt.Claims{UserID: uuid.New(), RoleID: roleID}
	return req.WithContext(WithClaims(req.Context(), claims))
}

func TestRequireProviderAdmitsTherapistsAndFriends(t *testing.T) {
	for roleID, want := range map[int]int{
		entity.RoleIDTherapist: http.StatusNoContent,
		entity.RoleIDFriend:    http.StatusNoContent,
		entity.RoleIDClient:    http.StatusForbidden,
		entity.RoleIDAdmin:     http.StatusForbidden,
	} {
		rec := httptest.NewRecorder()
		RequireProvider(echoIdentity).ServeHTTP(rec, withRole(roleID))
		assert.Equal(t, want, rec.Code, entity.RoleNameByID(roleID))
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAdmin(echoIdentity).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitPerClientIP(t *testing.T) {
	limiter := NewRateLimitMiddleware(config.RateLimitConfig{RPS: 0.001, Burst: 2})
	handler := limiter.Handle(echoIdentity)

	send := func(peer string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = peer + ":40000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, send("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, send("198.51.100.2"))
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	limiter := NewRateLimitMiddleware(config.RateLimitConfig{RPS: 1, Burst: 1})
	handler := limiter.Handle(echoIdentity)

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	limiter := NewRateLimitMiddleware(config.RateLimitConfig{
		RPS:            1,
		Burst:          1,
		TrustedProxies: []string{"10.0.0.0/8", "192.0.2.50", "not-an-ip"},
	})

	cases := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"untrusted peer keeps its own address", "203.0.113.7:1000", "198.51.100.9", "203.0.113.7"},
		{"trusted peer forwards client", "10.1.2.3:1000", "198.51.100.9", "198.51.100.9"},
		{"spoofed leftmost entry is skipped", "10.1.2.3:1000", "1.2.3.4, 198.51.100.9, 10.0.0.5", "198.51.100.9"},
		{"single trusted ip", "192.0.2.50:1000", "198.51.100.9", "198.51.100.9"},
		{"trusted peer without header", "10.1.2.3:1000", "", "10.1.2.3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			assert.Equal(t, tc.want, limiter.clientIP(req))
		})
	}
}

func TestRateLimitDropsIdleVisitors(t *testing.T) {
	limiter := NewRateLimitMiddleware(config.RateLimitConfig{RPS: 1, Burst: 1})
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.limiterFor("203.0.113.7")
	require.Len(t, limiter.visitors, 1)

	now = now.Add(10 * time.Minute)
	limiter.limiterFor("198.51.100.2")
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "198.51.100.2")
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:53211"
	assert.Equal(t, "192.0.2.10", NewRateLimitMiddleware(config.RateLimitConfig{}).clientIP(req))
}
