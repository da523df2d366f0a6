package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen       = 32 // AES-256
	pbkdf2Rounds = 4096
	gcmTagSize   = 16
)

// TokenCipher encrypts and decrypts remote-write credentials with
// AES-256-GCM. Ciphertext, nonce and authentication tag are stored as
// separate hex strings.
type TokenCipher struct {
	key []byte
}

// NewTokenCipher derives the AES key from the configured secret and salt.
// An empty secret is a construction-time failure so a misconfigured
// deployment fails at startup, not on first submission.
func NewTokenCipher(secret, salt string) (*TokenCipher, error) {
	if secret == "" {
		return nil, errors.New("token encryption secret is not configured")
	}
	key := pbkdf2.Key([]byte(secret), []byte(salt), pbkdf2Rounds, keyLen, sha256.New)
	return &TokenCipher{key: key}, nil
}

// Encrypt returns hex-encoded ciphertext, nonce (IV) and GCM auth tag.
func (t *TokenCipher) Encrypt(plaintext string) (ciphertext, iv, authTag string, err error) {
	block, err := aes.NewCipher(t.key)
	if err != nil {
		return "", "", "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", "", "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	// Seal appends the tag to the ciphertext; split them for storage.
	body := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	return hex.EncodeToString(body), hex.EncodeToString(nonce), hex.EncodeToString(tag), nil
}

// Decrypt reverses Encrypt. It fails if any of the three parts was
// tampered with.
func (t *TokenCipher) Decrypt(ciphertext, iv, authTag string) (string, error) {
	body, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	nonce, err := hex.DecodeString(iv)
	if err != nil {
		return "", err
	}
	tag, err := hex.DecodeString(authTag)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(t.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", errors.New("invalid nonce length")
	}

	plain, err := gcm.Open(nil, nonce, append(body, tag...), nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
