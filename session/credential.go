package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is a stored bearer token and the identity it belongs to.
type Credential struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	// ExpiresAt is zero for tokens without a readable expiry.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// Expired reports whether the credential is past its expiry at now.
func (c *Credential) Expired(now time.Time) bool {
	return c != nil && !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TTL returns the remaining lifetime, or 0 for credentials that do not
// expire.
func (c *Credential) TTL(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt.IsZero() {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return time.Nanosecond
}

type tokenClaims struct {
	ExpiresAt time.Time
	Email     string
	Name      string
}

// parseToken reads claims from a JWT without verifying its signature. The
// server remains the authority; the client only needs the expiry. Opaque
// tokens yield zero claims.
func parseToken(token string) tokenClaims {
	if strings.Count(token, ".") != 2 {
		return tokenClaims{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenClaims{}
	}
	var out tokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		out.Name = name
	}
	return out
}
