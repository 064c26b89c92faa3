package api

import (
	"context"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// Login exchanges email credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds transcription.Credentials) (*transcription.AuthResponse, error) {
	return c.authenticate(ctx, "auth/login", creds, MsgLoginFailed)
}

// Signup creates an account and returns its first token.
func (c *Client) Signup(ctx context.Context, creds transcription.Credentials) (*transcription.AuthResponse, error) {
	return c.authenticate(ctx, "auth/signup", creds, MsgSignupFailed)
}

func (c *Client) authenticate(ctx context.Context, path string, creds transcription.Credentials, fallback string) (*transcription.AuthResponse, error) {
	if err := validation.Validate(creds); err != nil {
		return nil, err
	}
	resp, err := httpclient.Post[*transcription.AuthResponse](ctx, c.http, path, creds)
	if err != nil {
		return nil, mapError(err, fallback, false)
	}
	if resp == nil || resp.Token == "" {
		return nil, errors.InvalidToken()
	}
	if resp.User.Email == "" {
		resp.User.Email = creds.Email
	}
	return resp, nil
}

// Me returns the identity behind the current token. A rejected token yields
// an UNAUTHORIZED AppError.
func (c *Client) Me(ctx context.Context) (*transcription.User, error) {
	user, err := httpclient.Get[*transcription.User](ctx, c.http, "auth/me")
	if err != nil {
		return nil, mapError(err, MsgLoadFailed, false)
	}
	if user == nil {
		return nil, errors.Unauthorized("")
	}
	return user, nil
}

// OAuthURL returns the URL that starts a social login with providerName.
func (c *Client) OAuthURL(ctx context.Context, providerName string) (string, error) {
	if err := validation.New().Required("provider", providerName).Validate(); err != nil {
		return "", err
	}
	resp, err := httpclient.Get[struct {
		URL string `json:"url"`
	}](ctx, c.http, "auth/oauth-url", httpclient.WithQuery("provider", providerName))
	if err != nil {
		return "", mapError(err, MsgLoadFailed, false)
	}
	return resp.URL, nil
}
