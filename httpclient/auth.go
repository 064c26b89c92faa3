package httpclient

import (
	"encoding/base64"
	"net/http"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthBearer
	AuthBasic
	// AuthTokenFunc reads a bearer token when each request is built.
	AuthTokenFunc
	AuthCustom
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type     AuthType
	Token    string
	Username string
	Password string
	// TokenFunc returns the current bearer token; empty sends no header.
	TokenFunc func() string
	Apply     func(*http.Request)
}

// BearerAuth sends a fixed bearer token.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth sends HTTP basic credentials.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// TokenAuth sends whatever bearer token fn returns at send time.
func TokenAuth(fn func() string) *AuthConfig {
	return &AuthConfig{Type: AuthTokenFunc, TokenFunc: fn}
}

// CustomAuth lets fn modify the outgoing request.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		setBearer(req, a.Token)
	case AuthTokenFunc:
		if a.TokenFunc != nil {
			setBearer(req, a.TokenFunc())
		}
	case AuthBasic:
		creds := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		req.Header.Set("Authorization", "Basic "+creds)
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
