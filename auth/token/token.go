// Package token issues and parses the HMAC-signed bearer tokens handed out
// by the auth endpoints.
//
//	svc, err := token.NewService(token.Config{Secret: "s3cret"})
//	signed, exp, err := svc.Issue(user)
//	claims, err := svc.Parse(signed)
package token

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Method is an HMAC signing algorithm.
type Method string

const (
	HS256 Method = "HS256"
	HS384 Method = "HS384"
	HS512 Method = "HS512"
)

// DefaultTTL is the access token lifetime.
const DefaultTTL = 24 * time.Hour

// Config configures the token service.
type Config struct {
	Secret string        `yaml:"secret" mapstructure:"secret"`
	Method Method        `yaml:"method" mapstructure:"method"`
	Issuer string        `yaml:"issuer" mapstructure:"issuer"`
	TTL    time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults fills the method and lifetime.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
}

// Validate checks the secret and method.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("token: secret is required")
	}
	if c.TTL < 0 {
		return errors.New("token: ttl must be non-negative")
	}
	if c.signingMethod() == nil {
		return fmt.Errorf("token: unsupported signing method: %s", c.Method)
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	}
	return nil
}

// Subject identifies the account a token is issued for.
type Subject struct {
	ID    string
	Email string
	Name  string
}

// Claims carries the account identity. email and name sit at the top level
// so clients can read them without verifying the signature.
type Claims struct {
	gojwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Service signs and parses Claims.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, now: time.Now}, nil
}

// Issue signs a token for sub and returns it with its expiry.
func (s *Service) Issue(sub Subject) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.TTL)
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   sub.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
		Email: sub.Email,
		Name:  sub.Name,
	}
	signed, err := gojwt.NewWithClaims(s.cfg.signingMethod(), claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, expiry and issuer of raw.
func (s *Service) Parse(raw string) (*Claims, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	claims := &Claims{}
	tok, err := gojwt.ParseWithClaims(raw, claims, func(*gojwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("token: parse: %w", err)
	}
	if !tok.Valid {
		return nil, errors.New("token: invalid token")
	}
	return claims, nil
}

// Validator adapts Parse to the bearer middleware, exposing sub, email and
// name as claim values.
func (s *Service) Validator() func(string) (map[string]interface{}, error) {
	return func(raw string) (map[string]interface{}, error) {
		c, err := s.Parse(raw)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"sub": c.Subject, "email": c.Email, "name": c.Name}, nil
	}
}
