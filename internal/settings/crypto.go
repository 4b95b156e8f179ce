package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32 // AES-256
	iterations = 100000
)

// ErrDecrypt is returned when the settings file cannot be opened with the passphrase
var ErrDecrypt = errors.New("decryption failed: invalid passphrase or corrupted data")

// defaultPassphrase obfuscates the file when SETTINGS_PASSPHRASE is unset
const defaultPassphrase = "investment-tracker-local-settings"

// Crypto seals settings with AES-256-GCM under a PBKDF2-derived key.
// Layout: salt | nonce | ciphertext+tag.
type Crypto struct {
	passphrase string
}

func NewCrypto(passphrase string) *Crypto {
	if passphrase == "" {
		passphrase = defaultPassphrase
	}
	return &Crypto{passphrase: passphrase}
}

func (c *Crypto) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(c.passphrase), salt, iterations, keySize, sha256.New)
}

func (c *Crypto) gcm(salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with a fresh salt and nonce
func (c *Crypto) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	aead, err := c.gcm(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	return aead.Seal(append(out, nonce...), nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt
func (c *Crypto) Decrypt(data []byte) ([]byte, error) {
	if len(data) < saltSize {
		return nil, errors.New("ciphertext too short")
	}
	salt, rest := data[:saltSize], data[saltSize:]

	aead, err := c.gcm(salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
