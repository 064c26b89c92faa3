// Package password hashes and verifies account passwords with bcrypt or
// argon2id.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password: mismatch")

// MinLength is the shortest password Hash accepts.
const MinLength = 8

// Hasher hashes passwords and checks them against stored hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Algorithm names a hashing scheme.
type Algorithm string

const (
	Bcrypt   Algorithm = "bcrypt"
	Argon2id Algorithm = "argon2id"
)

// New returns the hasher for alg with default parameters.
func New(alg Algorithm) (Hasher, error) {
	switch alg {
	case "", Bcrypt:
		return NewBcrypt(bcrypt.DefaultCost), nil
	case Argon2id:
		return NewArgon2id(), nil
	}
	return nil, fmt.Errorf("password: unsupported algorithm %q", alg)
}

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct{ cost int }

// NewBcrypt returns a bcrypt hasher. Out-of-range costs use the default.
func NewBcrypt(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := checkLength(password); err != nil {
		return "", err
	}
	if len(password) > 72 {
		return "", errors.New("password: longer than 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrMismatch
	}
	return nil
}

// Argon2Hasher hashes with argon2id. Hashes are encoded as
// $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

// NewArgon2id returns an argon2id hasher with time=1, 64MB and 4 lanes.
func NewArgon2id() *Argon2Hasher {
	return &Argon2Hasher{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if err := checkLength(password); err != nil {
		return "", err
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(password, encoded string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return errors.New("password: not an argon2id hash")
	}
	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return fmt.Errorf("password: argon2id params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("password: salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("password: key: %w", err)
	}
	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

func checkLength(password string) error {
	if len(password) < MinLength {
		return fmt.Errorf("password: shorter than %d characters", MinLength)
	}
	return nil
}
