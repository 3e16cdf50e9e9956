package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kazmori/sneakstore/auth"
)

type fakeStores struct {
	mu       sync.Mutex
	revoked  map[uuid.UUID]bool
	marks    map[uuid.UUID]time.Time
	accounts map[uuid.UUID]auth.Account
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		revoked:  make(map[uuid.UUID]bool),
		marks:    make(map[uuid.UUID]time.Time),
		accounts: make(map[uuid.UUID]auth.Account),
	}
}

func (f *fakeStores) Revoke(_ context.Context, id uuid.UUID, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[id] {
		return false, nil
	}
	f.revoked[id] = true
	return true, nil
}

func (f *fakeStores) IsRevoked(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[id], nil
}

func (f *fakeStores) Bump(_ context.Context, id uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if now.After(f.marks[id]) {
		f.marks[id] = now
	}
	return nil
}

func (f *fakeStores) Get(_ context.Context, id uuid.UUID) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marks[id], nil
}

func (f *fakeStores) FindByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type fixture struct {
	codec   *auth.Codec
	stores  *fakeStores
	router  *gin.Engine
	subject uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec := auth.NewCodec([]byte("test-secret"), 30*time.Minute, 30*24*time.Hour)
	stores := newFakeStores()
	policy := &auth.Policy{Revocations: stores, Watermarks: stores, Accounts: stores}

	subject := uuid.New()
	stores.accounts[subject] = auth.Account{ID: subject, Username: "hana"}

	r := gin.New()
	authn := Authenticate(codec, policy)
	r.GET("/me", authn, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": AccountFromContext(c).ID.String()})
	})
	r.GET("/users/:id", authn, RequireSameUser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/admin", authn, RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &fixture{codec: codec, stores: stores, router: r, subject: subject}
}

func (f *fixture) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) accessToken(t *testing.T, issuedAt time.Time) string {
	t.Helper()
	artifact, _, err := f.codec.Issue(f.subject, auth.ClassAccess, issuedAt)
	require.NoError(t, err)
	return artifact
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/me", f.accessToken(t, time.Now().UTC()))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), f.subject.String())
}

func TestAuthenticateMissingToken(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "AUTHORIZATION_REQUIRED")
}

func TestAuthenticateMalformedToken(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/me", "not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthenticateExpiredToken(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/me", f.accessToken(t, time.Now().UTC().Add(-time.Hour)))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthenticateRejectsRefreshTokenOnAccessRoute(t *testing.T) {
	f := newFixture(t)

	refresh, _, err := f.codec.Issue(f.subject, auth.ClassRefresh, time.Now().UTC())
	require.NoError(t, err)

	w := f.get(t, "/me", refresh)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "WRONG_TOKEN_TYPE")
}

func TestAuthenticateRevokedToken(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	artifact, claims, err := f.codec.Issue(f.subject, auth.ClassAccess, now)
	require.NoError(t, err)
	_, err = f.stores.Revoke(context.Background(), claims.TokenID, now)
	require.NoError(t, err)

	w := f.get(t, "/me", artifact)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestAuthenticateStaleTokenAfterWatermarkBump(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	token := f.accessToken(t, now.Add(-time.Minute))
	require.NoError(t, f.stores.Bump(context.Background(), f.subject, now))

	w := f.get(t, "/me", token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "TOKEN_STALE")
}

func TestAuthenticateDeletedAccount(t *testing.T) {
	f := newFixture(t)

	token := f.accessToken(t, time.Now().UTC())
	delete(f.stores.accounts, f.subject)

	w := f.get(t, "/me", token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "USER_NOT_FOUND")
}

func TestRequireSameUserGate(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, time.Now().UTC())

	w := f.get(t, "/users/"+f.subject.String(), token)
	require.Equal(t, http.StatusOK, w.Code)

	// A different path id is forbidden whether or not that account exists.
	w = f.get(t, "/users/"+uuid.New().String(), token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "FORBIDDEN")

	w = f.get(t, "/users/not-a-uuid", token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAdminGate(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/admin", f.accessToken(t, time.Now().UTC()))
	require.Equal(t, http.StatusForbidden, w.Code)

	f.stores.accounts[f.subject] = auth.Account{ID: f.subject, Username: "hana", IsAdmin: true}
	w = f.get(t, "/admin", f.accessToken(t, time.Now().UTC()))
	require.Equal(t, http.StatusOK, w.Code)
}
