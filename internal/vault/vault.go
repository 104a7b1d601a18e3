// Package vault stores API credentials encrypted at rest. Keys are derived
// from a passphrase with PBKDF2 and the payload is sealed with AES-256-GCM,
// so a leaked vault file is useless without the passphrase.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen    = 16
	nonceLen   = 12
	keyLen     = 32
	iterations = 100000
)

// Vault reads and writes one encrypted credentials file.
type Vault struct {
	path       string
	passphrase string
}

func New(path, passphrase string) *Vault {
	return &Vault{path: path, passphrase: passphrase}
}

// Encrypt seals plaintext with a fresh salt and nonce. The output is
// base64(salt | nonce | ciphertext), one self-contained string.
func Encrypt(plaintext, passphrase string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	payload := make([]byte, 0, saltLen+nonceLen+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt reverses Encrypt. A wrong passphrase fails authentication rather
// than yielding garbage.
func Decrypt(encoded, passphrase string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("malformed vault payload: %w", err)
	}
	if len(payload) < saltLen+nonceLen+1 {
		return "", errors.New("vault payload too short")
	}

	salt := payload[:saltLen]
	nonce := payload[saltLen : saltLen+nonceLen]
	sealed := payload[saltLen+nonceLen:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.New("decryption failed: wrong passphrase or corrupted vault")
	}
	return string(plaintext), nil
}

// Store encrypts the credential map and writes it to the vault file.
func (v *Vault) Store(credentials map[string]string) error {
	raw, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	sealed, err := Encrypt(string(raw), v.passphrase)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := os.WriteFile(v.path, []byte(sealed), 0600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}
	return nil
}

// Load decrypts the vault file. A missing file yields an empty map.
func (v *Vault) Load() (map[string]string, error) {
	raw, err := os.ReadFile(v.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	plaintext, err := Decrypt(string(raw), v.passphrase)
	if err != nil {
		return nil, err
	}

	credentials := make(map[string]string)
	if err := json.Unmarshal([]byte(plaintext), &credentials); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return credentials, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
}
