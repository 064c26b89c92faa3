package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Algorithm names a supported AEAD cipher.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is XChaCha20-Poly1305.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

const formatVersion byte = 1

var algorithmIDs = map[Algorithm]byte{
	AlgorithmAESGCM:   1,
	AlgorithmChaCha20: 2,
}

// ErrCiphertext is returned for data that cannot be opened with this key.
var ErrCiphertext = errors.New("encryption: invalid ciphertext")

// Encryptor seals and opens data with a key derived from a passphrase.
type Encryptor interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
	context   string
}

// WithAlgorithm selects the cipher.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// WithContext binds derived keys to a purpose string, so the same
// passphrase yields different keys for different uses.
func WithContext(purpose string) Option {
	return func(o *options) { o.context = purpose }
}

// New derives a 256-bit key from passphrase with HKDF-SHA256 and returns
// an Encryptor for the selected algorithm.
func New(passphrase string, opts ...Option) (Encryptor, error) {
	if passphrase == "" {
		return nil, errors.New("encryption: empty key")
	}
	o := options{algorithm: AlgorithmAESGCM, context: "scribekit"}
	for _, opt := range opts {
		opt(&o)
	}
	id, ok := algorithmIDs[o.algorithm]
	if !ok {
		return nil, fmt.Errorf("encryption: unsupported algorithm %q", o.algorithm)
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(o.context+"/"+string(o.algorithm)))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch o.algorithm {
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.NewX(key)
	default:
		var block cipher.Block
		if block, err = aes.NewCipher(key); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", o.algorithm, err)
	}
	return &aeadEncryptor{aead: aead, header: []byte{formatVersion, id}}, nil
}

type aeadEncryptor struct {
	aead   cipher.AEAD
	header []byte
}

// Seal returns header || nonce || ciphertext. The header is authenticated.
func (e *aeadEncryptor) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, len(e.header)+len(nonce)+len(plaintext)+e.aead.Overhead())
	out = append(out, e.header...)
	out = append(out, nonce...)
	return e.aead.Seal(out, nonce, plaintext, e.header), nil
}

func (e *aeadEncryptor) Open(sealed []byte) ([]byte, error) {
	n := len(e.header) + e.aead.NonceSize()
	if len(sealed) < n+e.aead.Overhead() {
		return nil, ErrCiphertext
	}
	if sealed[0] != e.header[0] || sealed[1] != e.header[1] {
		return nil, fmt.Errorf("%w: format or algorithm mismatch", ErrCiphertext)
	}
	plaintext, err := e.aead.Open(nil, sealed[len(e.header):n], sealed[n:], e.header)
	if err != nil {
		return nil, ErrCiphertext
	}
	return plaintext, nil
}

// Encrypt seals plaintext and base64-encodes the result.
func (e *aeadEncryptor) Encrypt(plaintext string) (string, error) {
	sealed, err := e.Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *aeadEncryptor) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	plaintext, err := e.Open(data)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
