package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/session"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// passwordEnv supplies the password when -password is not given.
const passwordEnv = "SCRIBE_PASSWORD"

func credentialFlags(e *env, name string, args []string, withName bool) (transcription.Credentials, error) {
	fs := newFlags(e, name)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (default $"+passwordEnv+")")
	var display *string
	if withName {
		display = fs.String("name", "", "display name")
	}
	if err := parse(fs, args); err != nil {
		return transcription.Credentials{}, err
	}
	creds := transcription.Credentials{Email: *email, Password: *password}
	if creds.Password == "" {
		creds.Password = os.Getenv(passwordEnv)
	}
	if display != nil {
		creds.Name = *display
	}
	if err := validation.New().
		Required("email", creds.Email).
		Email("email", creds.Email).
		Required("password", creds.Password).
		Validate(); err != nil {
		return creds, err
	}
	return creds, nil
}

func runLogin(ctx context.Context, e *env, args []string) error {
	creds, err := credentialFlags(e, "login", args, false)
	if err != nil {
		return err
	}
	cred, err := e.client.Login(ctx, creds)
	if err != nil {
		return err
	}
	return printCredential(e, cred)
}

func runSignup(ctx context.Context, e *env, args []string) error {
	creds, err := credentialFlags(e, "signup", args, true)
	if err != nil {
		return err
	}
	cred, err := e.client.Signup(ctx, creds)
	if err != nil {
		return err
	}
	return printCredential(e, cred)
}

func runLogout(ctx context.Context, e *env, args []string) error {
	if err := parse(newFlags(e, "logout"), args); err != nil {
		return err
	}
	if err := e.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "logged out")
	return nil
}

func runWhoami(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "whoami")
	token := fs.String("token", "", "store this token first, e.g. one from a social login")
	if err := parse(fs, args); err != nil {
		return err
	}
	var (
		user *transcription.User
		err  error
	)
	if *token != "" {
		user, err = e.client.UseToken(ctx, *token)
	} else {
		user, err = e.client.Me(ctx)
	}
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, user)
	}
	if user.Name != "" {
		fmt.Fprintf(e.out, "%s <%s>\n", user.Name, user.Email)
	} else {
		fmt.Fprintln(e.out, user.Email)
	}
	return nil
}

func runOAuthURL(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "oauth-url")
	provider := fs.String("provider", "", "social login provider, e.g. google or kakao")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := validation.Required("provider", *provider); err != nil {
		return err
	}
	u, err := e.client.OAuthURL(ctx, *provider)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, u)
	return nil
}

func runHealth(ctx context.Context, e *env, args []string) error {
	if err := parse(newFlags(e, "health"), args); err != nil {
		return err
	}
	h, err := e.client.API().Health(ctx)
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, h)
	}
	fmt.Fprintf(e.out, "%s %s\n", e.client.API().BaseURL(), h.Status)
	if !h.Healthy() {
		return errors.ServerError(http.StatusServiceUnavailable, fmt.Sprintf("Service reports %q.", h.Status))
	}
	return nil
}

func printCredential(e *env, cred *session.Credential) error {
	if e.json {
		return printJSON(e, map[string]any{
			"email":      cred.Email,
			"name":       cred.Name,
			"expires_at": cred.ExpiresAt,
		})
	}
	fmt.Fprintf(e.out, "logged in as %s\n", cred.Email)
	if !cred.ExpiresAt.IsZero() {
		fmt.Fprintf(e.out, "token expires %s\n", cred.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
