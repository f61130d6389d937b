package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueThenVerify(t *testing.T) {
	v := NewVerifier("s3cret", "focis-idp", fixedClock(t0))
	want := domain.Actor{UserID: "u-17", Role: domain.RoleForeman, FactoryID: "fac-1"}

	token, err := v.Issue(want, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("s3cret", "focis-idp", fixedClock(t0))
	actor := domain.Actor{UserID: "u-17", Role: domain.RoleOperator}
	valid, err := v.Issue(actor, time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewVerifier("s3cret", "focis-idp", fixedClock(t0.Add(2*time.Hour)))
		_, err := later.Verify(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerifier("other", "focis-idp", fixedClock(t0))
		_, err := other.Verify(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewVerifier("s3cret", "elsewhere", fixedClock(t0))
		_, err := other.Verify(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u-17",
				Issuer:    "focis-idp",
				ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
			},
			Role: "Janitor",
		}).SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := v.Issue(domain.Actor{Role: domain.RoleOperator}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

// echoActor reports the actor the middleware attached, or 204 when none.
func echoActor(t *testing.T, got *domain.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := domain.ActorFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		*got = a
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateBearer(t *testing.T) {
	v := NewVerifier("s3cret", "", fixedClock(t0))
	token, err := v.Issue(domain.Actor{UserID: "u-9", Role: domain.RoleStorekeeper}, time.Hour)
	require.NoError(t, err)

	var got domain.Actor
	h := Authenticate(v)(echoActor(t, &got))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"anonymous", "", http.StatusNoContent},
		{"valid", "Bearer " + token, http.StatusOK},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, "u-9", got.UserID)
	assert.Equal(t, domain.RoleStorekeeper, got.Role)
}

func TestAuthenticateDevHeaders(t *testing.T) {
	var got domain.Actor
	h := Authenticate(nil)(echoActor(t, &got))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderUserID, "u-sec")
	req.Header.Set(HeaderUserRole, "Security")
	req.Header.Set(HeaderFactoryID, "fac-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Actor{UserID: "u-sec", Role: domain.RoleSecurity, FactoryID: "fac-1"}, got)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderUserID, "u-sec")
	req.Header.Set(HeaderUserRole, "Janitor")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
