package settings

import (
	"bytes"
	"errors"
	"testing"
)

func TestCrypto_RoundTrip(t *testing.T) {
	large := make([]byte, 256*1024)
	for i := range large {
		large[i] = byte(i % 251)
	}

	tests := []struct {
		name       string
		passphrase string
		plaintext  []byte
	}{
		{"settings json", "test-passphrase", []byte(`{"email":"me@example.com","smtp_password":"hunter2"}`)},
		{"default passphrase", "", []byte("telegram token")},
		{"empty payload", "test", []byte{}},
		{"large payload", "test", large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCrypto(tt.passphrase)
			sealed, err := c.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.plaintext) > 0 && bytes.Contains(sealed, tt.plaintext) {
				t.Error("ciphertext leaks the plaintext")
			}
			opened, err := c.Decrypt(sealed)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened, tt.plaintext) {
				t.Error("Decrypt() did not return the original plaintext")
			}
		})
	}
}

func TestCrypto_WrongPassphrase(t *testing.T) {
	sealed, err := NewCrypto("passphrase1").Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := NewCrypto("passphrase2").Decrypt(sealed); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() with wrong passphrase error = %v, want ErrDecrypt", err)
	}
}

func TestCrypto_RejectsBadInput(t *testing.T) {
	c := NewCrypto("test")
	sealed, _ := c.Encrypt([]byte("test data"))
	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte{1, 2, 3, 4, 5}},
		{"salt only", make([]byte, saltSize)},
		{"garbage", []byte("this is not encrypted data at all")},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decrypt(tt.data); err == nil {
				t.Errorf("Decrypt(%s) should fail", tt.name)
			}
		})
	}
}

func TestCrypto_FreshSaltPerEncryption(t *testing.T) {
	c := NewCrypto("test")
	a, _ := c.Encrypt([]byte("same"))
	b, _ := c.Encrypt([]byte("same"))
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same data should differ")
	}
}
