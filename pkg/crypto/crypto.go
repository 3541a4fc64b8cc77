package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealKeySize   = 32
	sealNonceSize = 24
)

var ErrSealedValueInvalid = errors.New("sealed value invalid")

// SHA256Hex returns the lower-case hex SHA-256 digest of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NormalizeSecretWord trims and lower-cases a recovery secret word.
func NormalizeSecretWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// NormalizeBirthDate trims a recovery birth date; the format is compared verbatim.
func NormalizeBirthDate(date string) string {
	return strings.TrimSpace(date)
}

// GenerateRandomString produces a cryptographically random base64url string of n bytes.
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateSealKey returns a random key in the hex form NewSealer accepts.
func GenerateSealKey() (string, error) {
	b := make([]byte, sealKeySize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate seal key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Sealer encrypts short plaintexts with NaCl secretbox. Used for the
// recovery side index, which must map a code hash back to the code.
type Sealer struct {
	key [sealKeySize]byte
}

// NewSealer builds a Sealer from a 64-character hex key.
func NewSealer(hexKey string) (*Sealer, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode seal key: %w", err)
	}
	if len(raw) != sealKeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", sealKeySize, len(raw))
	}
	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal returns base64(nonce || box).
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [sealNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < sealNonceSize+secretbox.Overhead {
		return "", ErrSealedValueInvalid
	}
	var nonce [sealNonceSize]byte
	copy(nonce[:], raw[:sealNonceSize])
	plain, ok := secretbox.Open(nil, raw[sealNonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealedValueInvalid
	}
	return string(plain), nil
}
