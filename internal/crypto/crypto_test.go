package crypto

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	km, err := NewKeyManager()
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}

	for _, plaintext := range []string{
		"sk-test-1234567890",
		"a",
		"key with spaces and ünïcode",
	} {
		t.Run(plaintext, func(t *testing.T) {
			enc, err := km.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			if !strings.HasPrefix(enc, EncryptedPrefix) {
				t.Errorf("encrypted value %q lacks prefix", enc)
			}
			if !IsEncrypted(enc) {
				t.Errorf("IsEncrypted(%q) = false, want true", enc)
			}

			dec, err := km.Decrypt(enc)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if dec != plaintext {
				t.Errorf("round trip = %q, want %q", dec, plaintext)
			}
		})
	}
}

func TestEncryptEmpty(t *testing.T) {
	km, err := NewKeyManager()
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}

	enc, err := km.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc != "" {
		t.Errorf("Encrypt(\"\") = %q, want \"\"", enc)
	}
}

func TestMaybeDecryptPassesPlaintextThrough(t *testing.T) {
	km, err := NewKeyManager()
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}

	got, err := km.MaybeDecrypt("plain-old-key")
	if err != nil {
		t.Fatalf("MaybeDecrypt: %v", err)
	}
	if got != "plain-old-key" {
		t.Errorf("MaybeDecrypt = %q, want unchanged plaintext", got)
	}
}

func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"sk-plaintext", false},
		{"ENC:not-base64!!", false},
		{"ENC:c2hvcnQ=", false}, // valid base64 but too short
	}
	for _, tt := range tests {
		if got := IsEncrypted(tt.value); got != tt.want {
			t.Errorf("IsEncrypted(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDecryptGarbageFails(t *testing.T) {
	km, err := NewKeyManager()
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}

	if _, err := km.Decrypt("ENC:AAAA"); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}
