package scribe

import (
	"context"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/session"
	"github.com/kbukum/scribekit/transcription"
)

// Login authenticates with email credentials and stores the token.
func (c *Client) Login(ctx context.Context, creds transcription.Credentials) (*session.Credential, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return c.store(ctx, sess, resp)
}

// Signup creates an account and stores its token.
func (c *Client) Signup(ctx context.Context, creds transcription.Credentials) (*session.Credential, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Signup(ctx, creds)
	if err != nil {
		return nil, err
	}
	return c.store(ctx, sess, resp)
}

func (c *Client) store(ctx context.Context, sess *session.Session, resp *transcription.AuthResponse) (*session.Credential, error) {
	cred, err := sess.Save(ctx, resp.Token, resp.User)
	if err != nil {
		return nil, err
	}
	c.log.Info("logged in", logger.Fields(logger.FieldEmail, cred.Email))
	return cred, nil
}

// UseToken stores a token obtained elsewhere, such as a social login
// callback, and verifies it with the service. A rejected token is not kept.
func (c *Client) UseToken(ctx context.Context, token string) (*transcription.User, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if _, err := sess.Save(ctx, token, transcription.User{}); err != nil {
		return nil, err
	}
	user, err := sess.Verify(ctx, c.api)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Save(ctx, token, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout forgets the stored credential.
func (c *Client) Logout(ctx context.Context) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	return sess.Clear(ctx)
}

// Me verifies the stored credential with the service. A credential the
// service rejects is cleared.
func (c *Client) Me(ctx context.Context) (*transcription.User, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	return sess.Verify(ctx, c.api)
}

// OAuthURL returns the URL that starts a social login with provider.
func (c *Client) OAuthURL(ctx context.Context, provider string) (string, error) {
	return c.api.OAuthURL(ctx, provider)
}
