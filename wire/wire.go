// Package wire holds constants and helpers shared by the frame codec and the
// live-scan assembler for recognizing the encryption layer's wire format —
// a boundary the core must recognize but never produces or authenticates
// itself (spec §1, §6).
package wire

import "encoding/binary"

// Magic is the 4-byte header the out-of-scope encryption layer prepends to
// every encrypted payload: version 1, AES-256-GCM + PBKDF2.
var Magic = [4]byte{0xCB, 0x42, 0x01, 0x00}

// SaltLen and IVLen are the fixed-size fields that follow Magic in an
// encrypted payload, before the ciphertext+tag.
const (
	SaltLen = 16
	IVLen   = 12
	// MinCiphertextLen is the minimum ciphertext+tag length (empty
	// plaintext + 16-byte GCM tag).
	MinCiphertextLen = 16
	// MinPayloadLen is len(Magic)+SaltLen+IVLen+MinCiphertextLen: the
	// smallest payload encryption.Decrypt will accept.
	MinPayloadLen = 4 + SaltLen + IVLen + MinCiphertextLen // 48
	// FrameZeroMinLen is the core's own frame-0 length-prefix floor (spec
	// §4.G's frame_zero_hash validity range), independent of whatever the
	// encryption layer happens to require.
	FrameZeroMinLen = 32
)

// LengthPrefixSize is the width of the big-endian length prefix that opens
// every multi-frame byte stream (spec §3 "Payload framing").
const LengthPrefixSize = 4

// PutLengthPrefix writes the 4-byte big-endian length prefix for payload
// length L.
func PutLengthPrefix(l uint32) [LengthPrefixSize]byte {
	var out [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(out[:], l)
	return out
}

// ReadLengthPrefix reads the 4-byte big-endian length prefix from the front
// of buf. buf must have at least LengthPrefixSize bytes.
func ReadLengthPrefix(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf[:LengthPrefixSize])
}

// LooksLikeFrameZero validates a candidate decoded frame's first 8 bytes as
// a frame-0 length prefix plus magic, per spec §4.G / §6: L must satisfy
// L >= 32, and ceil(L/dpf) <= 255 frames must exist to hold it. Returns the
// decoded length and whether the candidate is valid.
func LooksLikeFrameZero(buf []byte, dpf int) (length uint32, ok bool) {
	if len(buf) < LengthPrefixSize+len(Magic) || dpf <= 0 {
		return 0, false
	}
	l := ReadLengthPrefix(buf)
	if l < FrameZeroMinLen {
		return 0, false
	}
	frames := (int(l) + dpf - 1) / dpf
	if frames > 255 {
		return 0, false
	}
	for i, m := range Magic {
		if buf[LengthPrefixSize+i] != m {
			return 0, false
		}
	}
	return l, true
}
