// Package encryption is the AES-256-GCM + PBKDF2 collaborator spec.md §1
// deliberately excludes from the core codec: it produces and consumes the
// wire-format payload the core only recognizes (see wire.Magic,
// wire.LooksLikeFrameZero), but no core package imports it. Only
// /cmd/cimbar depends on this package.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mezinster/cimbar-go/wire"
)

// iterations is the PBKDF2 work factor. Kept as a constant rather than a
// tunable: varying it would require persisting the chosen value alongside
// the salt, and this package exists to demonstrate the end-to-end CLI round
// trip, not to be a production KDF policy surface.
const iterations = 200_000

const keyLen = 32 // AES-256

var (
	// ErrShortPayload indicates a payload shorter than wire.MinPayloadLen.
	ErrShortPayload = errors.New("encryption: payload shorter than minimum header+tag length")
	// ErrBadMagic indicates the payload's first 4 bytes don't match
	// wire.Magic.
	ErrBadMagic = errors.New("encryption: payload magic mismatch")
)

// Encrypt derives a key from password via PBKDF2-SHA256 over a fresh random
// salt, and seals plaintext under AES-256-GCM with a fresh random nonce.
// The returned bytes are exactly the wire format wire.Magic describes:
// magic || salt || nonce || ciphertext+tag.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, wire.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, wire.IVLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(wire.Magic)+wire.SaltLen+wire.IVLen+len(ciphertext))
	out = append(out, wire.Magic[:]...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt is the inverse of Encrypt: validates the magic header, re-derives
// the key from the embedded salt, and opens the GCM-sealed ciphertext.
func Decrypt(payload []byte, password string) ([]byte, error) {
	if len(payload) < wire.MinPayloadLen {
		return nil, ErrShortPayload
	}
	for i, m := range wire.Magic {
		if payload[i] != m {
			return nil, ErrBadMagic
		}
	}

	offset := len(wire.Magic)
	salt := payload[offset : offset+wire.SaltLen]
	offset += wire.SaltLen
	nonce := payload[offset : offset+wire.IVLen]
	offset += wire.IVLen
	ciphertext := payload[offset:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
