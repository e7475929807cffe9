// Package crypto obfuscates API keys at rest in the settings file.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// EncryptedPrefix marks stored values that have been encrypted.
const EncryptedPrefix = "ENC:"

// KeyManager encrypts and decrypts API key values with a key derived
// from machine-specific data. This is obfuscation against casual file
// reads, not protection against an attacker with local access.
type KeyManager struct {
	key []byte
}

// NewKeyManager creates a KeyManager with a derived key.
func NewKeyManager() (*KeyManager, error) {
	key, err := deriveKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return &KeyManager{key: key}, nil
}

func deriveKey() ([]byte, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	seed := fmt.Sprintf("%s-%s-sttmgr-key-v1", homeDir, hostname)
	hash := sha256.Sum256([]byte(seed))
	return hash[:], nil
}

// Encrypt encrypts a plaintext API key. Empty input stays empty.
func (km *KeyManager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(km.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts an encrypted API key value.
func (km *KeyManager) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	data := strings.TrimPrefix(ciphertext, EncryptedPrefix)

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(km.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(decoded) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertextBytes := decoded[:nonceSize], decoded[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// MaybeDecrypt decrypts a value only when it carries the ENC: prefix,
// so settings files written before encryption was enabled still load.
func (km *KeyManager) MaybeDecrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	return km.Decrypt(value)
}

// IsEncrypted reports whether a stored value looks encrypted.
func IsEncrypted(value string) bool {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return false
	}

	// AES-GCM nonce is 12 bytes, plus at least some ciphertext
	return len(decoded) >= 20
}
