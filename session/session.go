package session

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/provider"
	"github.com/kbukum/scribekit/transcription"
)

// DefaultKey is the store key of the credential.
const DefaultKey = "credential"

// Store persists credentials.
type Store = provider.ContextStore[Credential]

// Identity checks a token against the server. *api.Client implements it.
type Identity interface {
	Me(ctx context.Context) (*transcription.User, error)
}

// Session owns the bearer credential: it loads, saves and clears it, and
// hands the token to the API client.
type Session struct {
	store Store
	key   string
	log   *logger.Logger
	now   func() time.Time

	mu  sync.RWMutex
	cur *Credential
}

// Option configures a Session.
type Option func(*Session)

// WithKey stores the credential under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(s *Session) { s.key = key }
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New returns a Session over store. Call Load to read a saved credential.
func New(store Store, opts ...Option) *Session {
	s := &Session{store: store, key: DefaultKey, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("session")
	}
	return s
}

// Load reads the stored credential. It returns (nil, nil) when none is
// stored. An expired credential is removed and reported as TOKEN_EXPIRED.
func (s *Session) Load(ctx context.Context) (*Credential, error) {
	c, err := s.store.Load(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if c != nil && c.Expired(s.now()) {
		s.log.Info("stored credential expired", logger.Fields(logger.FieldEmail, c.Email))
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, errors.TokenExpired()
	}
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
	return clone(c), nil
}

// Save stores token for user. The expiry comes from the token's exp claim
// when it is a JWT.
func (s *Session) Save(ctx context.Context, token string, user transcription.User) (*Credential, error) {
	if token == "" {
		return nil, errors.InvalidToken()
	}
	claims := parseToken(token)
	c := &Credential{
		Token:     token,
		Email:     firstNonEmpty(user.Email, claims.Email),
		Name:      firstNonEmpty(user.Name, claims.Name),
		ExpiresAt: claims.ExpiresAt,
		SavedAt:   s.now().UTC(),
	}
	if c.Expired(s.now()) {
		return nil, errors.TokenExpired()
	}
	if err := s.store.Save(ctx, s.key, c, c.TTL(s.now())); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
	s.log.Debug("credential saved", logger.Fields(logger.FieldEmail, c.Email))
	return clone(c), nil
}

// Clear removes the credential from memory and the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
	return s.store.Delete(ctx, s.key)
}

// Current returns the loaded credential, or nil when there is none or it
// has expired.
func (s *Session) Current() *Credential {
	s.mu.RLock()
	c := s.cur
	s.mu.RUnlock()
	if c == nil || c.Expired(s.now()) {
		return nil
	}
	return clone(c)
}

// Token returns the current bearer token or "".
func (s *Session) Token() string {
	if c := s.Current(); c != nil {
		return c.Token
	}
	return ""
}

// Verify checks the current credential with id. A credential the server
// rejects as unauthorized is cleared.
func (s *Session) Verify(ctx context.Context, id Identity) (*transcription.User, error) {
	if s.Current() == nil {
		return nil, errors.NoSession()
	}
	user, err := id.Me(ctx)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeUnauthorized) {
			s.log.Info("credential rejected by server, clearing")
			if clearErr := s.Clear(ctx); clearErr != nil {
				s.log.Warn("failed to clear credential", logger.ErrorFields("verify", clearErr))
			}
		}
		return nil, err
	}
	return user, nil
}

func clone(c *Credential) *Credential {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
