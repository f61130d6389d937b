// internal/identity/middleware.go
package identity

import (
	"net/http"
	"strings"

	"focis/internal/domain"
)

// Header names read in development mode, when no verifier is configured.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderFactoryID = "X-Factory-ID"
)

// Authenticate attaches the caller's actor to the request context.
// Requests without credentials pass through anonymously; actions that record
// events reject them later. Bad credentials are refused with 401.
//
// With a nil verifier the actor is taken from the X-User-* headers.
func Authenticate(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok, err := fromRequest(v, r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			if ok {
				r = r.WithContext(domain.WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func fromRequest(v *Verifier, r *http.Request) (domain.Actor, bool, error) {
	if v == nil {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			return domain.Actor{}, false, nil
		}
		role := domain.Role(strings.TrimSpace(r.Header.Get(HeaderUserRole)))
		if !role.IsValid() {
			return domain.Actor{}, false, ErrInvalidRole
		}
		return domain.Actor{
			UserID:    userID,
			Role:      role,
			FactoryID: strings.TrimSpace(r.Header.Get(HeaderFactoryID)),
		}, true, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return domain.Actor{}, false, nil
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return domain.Actor{}, false, ErrInvalidToken
	}
	actor, err := v.Verify(token)
	if err != nil {
		return domain.Actor{}, false, err
	}
	return actor, true, nil
}
