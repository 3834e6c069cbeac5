// Package cimbar is the public facade tying frame, locate, warp, decode and
// scan together into the two external interfaces spec §6 names: a
// single-call Encode/DecodePhoto pair for lossless or single-photo use, and
// a stateful LiveSession for a multi-frame camera scan.
package cimbar

import (
	"image"
	"sync"

	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/decode"
	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/scan"
	"github.com/mezinster/cimbar-go/tuning"
	"github.com/mezinster/cimbar-go/wire"
)

// Encode renders encryptedBytes (already-encrypted payload bytes; the
// encryption layer itself is out of scope for this package, see
// /encryption) as a sequence of frameSize RGBA bitmaps (spec §4.C).
func Encode(encryptedBytes []byte, frameSize int) ([]*image.RGBA, error) {
	return frame.EncodeStream(encryptedBytes, frameSize)
}

// DecodePhoto runs the full camera decode pipeline (component F) against a
// single photographed bitmap expected to hold an entire payload in one
// frame, validates its length prefix and magic, and returns the enclosed
// (still-encrypted) bytes.
func DecodePhoto(bitmap *image.RGBA, cfg tuning.Config) ([]byte, error) {
	decoded, frameSize, err := decode.DecodeCamera(bitmap, cfg)
	if err != nil {
		return nil, err
	}
	dpf := frame.DataPerFrame(frameSize)
	length, ok := wire.LooksLikeFrameZero(decoded, dpf)
	if !ok {
		return nil, cerrors.ErrBadLengthPrefix
	}
	end := wire.LengthPrefixSize + int(length)
	if end > len(decoded) {
		return nil, cerrors.ErrBadLengthPrefix
	}
	return decoded[wire.LengthPrefixSize:end], nil
}

// LiveSession drives a multi-frame camera scan: each Submit decodes one
// photographed bitmap (component F, expected to run on a caller-supplied
// worker pool per spec §5) and feeds the result into a single-threaded
// scan.Session (component G). The frame_size is learned from the first
// submitted photo and held fixed for the rest of the session.
type LiveSession struct {
	cfg tuning.Config

	mu        sync.Mutex
	session   *scan.Session
	frameSize int
	sized     bool
	cancelled bool
}

// NewLiveSession starts an empty live-scan session under the given tuning
// configuration.
func NewLiveSession(cfg tuning.Config) *LiveSession {
	return &LiveSession{cfg: cfg}
}

// Submit decodes bitmap and folds it into the assembler. It returns the
// reassembled payload and true once the adjacency chain completes; a
// cancelled session silently ignores further submissions. The decode work
// (component F) runs outside the session lock so concurrent callers on a
// worker pool genuinely overlap, per spec §5 — only the single-threaded
// assembler (component G) and the small bit of frame_size bookkeeping it
// depends on are serialized.
func (s *LiveSession) Submit(bitmap *image.RGBA) ([]byte, bool, error) {
	s.mu.Lock()
	cancelled, sized, frameSize := s.cancelled, s.sized, s.frameSize
	s.mu.Unlock()

	if cancelled {
		return nil, false, nil
	}

	var decoded []byte
	var fs int
	var err error
	if !sized {
		decoded, fs, err = decode.DecodeCamera(bitmap, s.cfg)
	} else {
		fs = frameSize
		decoded, err = decode.DecodeCameraAtSize(bitmap, fs, s.cfg)
	}
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return nil, false, nil
	}
	if !s.sized {
		s.frameSize = fs
		s.sized = true
		s.session = scan.NewSession(frame.DataPerFrame(fs))
	}
	payload, complete := s.session.Submit(decoded)
	return payload, complete, nil
}

// Reset discards all session state, including the learned frame_size and
// any cancellation, so the next Submit starts a fresh scan from scratch.
func (s *LiveSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.sized = false
	s.frameSize = 0
	s.cancelled = false
}

// Cancel stops the session from processing further submissions. Already
// assembled state is retained until Reset.
func (s *LiveSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// FramesSeen reports how many distinct frames the session has recorded, or
// 0 before the first successful Submit.
func (s *LiveSession) FramesSeen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return 0
	}
	return s.session.FramesSeen()
}
