package encryption_test

import (
	"bytes"
	"testing"

	"github.com/mezinster/cimbar-go/encryption"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("payload bytes that will travel through the cimbar codec")
	password := "correct horse battery staple"

	payload, err := encryption.Encrypt(plaintext, password)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := encryption.Decrypt(payload, password)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Decrypt = %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongPasswordFails(t *testing.T) {
	payload, err := encryption.Encrypt([]byte("secret"), "right-password")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := encryption.Decrypt(payload, "wrong-password"); err == nil {
		t.Fatal("expected an authentication failure with the wrong password")
	}
}

func TestDecryptRejectsShortPayload(t *testing.T) {
	if _, err := encryption.Decrypt([]byte{1, 2, 3}, "x"); err != encryption.ErrShortPayload {
		t.Fatalf("err = %v, want ErrShortPayload", err)
	}
}

func TestDecryptRejectsBadMagic(t *testing.T) {
	payload, err := encryption.Encrypt([]byte("secret"), "pw")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	payload[0] ^= 0xFF
	if _, err := encryption.Decrypt(payload, "pw"); err != encryption.ErrBadMagic {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}
