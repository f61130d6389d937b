// internal/identity/token.go
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"focis/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid identity token")
	ErrInvalidRole  = errors.New("invalid role")
)

// claims is the token body the identity provider signs.
type claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	FactoryID string `json:"factoryId,omitempty"`
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier creates a verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, now: now}
}

// Verify parses token and returns the actor it asserts.
func (v *Verifier) Verify(token string) (domain.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Actor{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: sub is required", ErrInvalidToken)
	}
	role := domain.Role(c.Role)
	if !role.IsValid() {
		return domain.Actor{}, fmt.Errorf("%w: %q", ErrInvalidRole, c.Role)
	}
	return domain.Actor{UserID: c.Subject, Role: role, FactoryID: c.FactoryID}, nil
}

// Issue signs a token for a, valid for ttl. Used by tooling and tests that
// stand in for the identity provider.
func (v *Verifier) Issue(a domain.Actor, ttl time.Duration) (string, error) {
	if !a.Role.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, a.Role)
	}
	now := v.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      string(a.Role),
		FactoryID: a.FactoryID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
