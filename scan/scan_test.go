package scan_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/scan"
	"github.com/mezinster/cimbar-go/wire"
)

// withMagic prefixes body with wire.Magic, as every encrypted payload is, so
// that frame 0 passes the length-prefix-and-magic check.
func withMagic(body []byte) []byte {
	return append(append([]byte(nil), wire.Magic[:]...), body...)
}

func TestSessionAssemblesInOrder(t *testing.T) {
	frameSize := 128
	payload := withMagic([]byte("live scan assembly, straightforward in-order delivery"))
	dpf := frame.DataPerFrame(frameSize)

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	s := scan.NewSession(dpf)
	var got []byte
	var complete bool
	for _, img := range frames {
		decoded := frame.DecodeFrame(img, frameSize)
		got, complete = s.Submit(decoded)
		if complete {
			break
		}
	}
	if !complete {
		t.Fatal("session never reported completion")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled payload = %q, want %q", got, payload)
	}
}

func TestSessionAssemblesOutOfOrder(t *testing.T) {
	frameSize := 128
	payload := withMagic(bytes.Repeat([]byte("xyz-out-of-order-"), 40))
	dpf := frame.DataPerFrame(frameSize)

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	if len(frames) < 3 {
		t.Fatalf("need at least 3 frames for an out-of-order test, got %d", len(frames))
	}

	decoded := make([][]byte, len(frames))
	for i, img := range frames {
		decoded[i] = frame.DecodeFrame(img, frameSize)
	}

	order := rand.New(rand.NewSource(1)).Perm(len(decoded))

	s := scan.NewSession(dpf)
	var got []byte
	var complete bool
	for _, idx := range order {
		got, complete = s.Submit(decoded[idx])
	}
	if !complete {
		t.Fatal("session never reported completion despite all frames submitted")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled payload = %q, want %q", got, payload)
	}
}

func TestSessionDuplicateSubmitIsIdempotent(t *testing.T) {
	frameSize := 128
	payload := withMagic([]byte("duplicate frame submission must not corrupt state"))
	dpf := frame.DataPerFrame(frameSize)

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	s := scan.NewSession(dpf)
	decoded := make([][]byte, len(frames))
	for i, img := range frames {
		decoded[i] = frame.DecodeFrame(img, frameSize)
	}

	for _, d := range decoded {
		s.Submit(d)
		s.Submit(d) // duplicate
	}
	if seen := s.FramesSeen(); seen != len(frames) {
		t.Fatalf("FramesSeen = %d after duplicates, want %d", seen, len(frames))
	}

	got, complete := s.Submit(decoded[0])
	if !complete {
		t.Fatal("expected completion after resubmitting an already-seen frame")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled payload = %q, want %q", got, payload)
	}
}

func TestSessionResetClearsState(t *testing.T) {
	s := scan.NewSession(100)
	s.Submit(bytes.Repeat([]byte{1}, 100))
	if s.FramesSeen() == 0 {
		t.Fatal("expected at least one frame recorded before reset")
	}
	s.Reset()
	if s.FramesSeen() != 0 {
		t.Fatalf("FramesSeen after Reset = %d, want 0", s.FramesSeen())
	}
	if s.TotalFrames() != 0 {
		t.Fatalf("TotalFrames after Reset = %d, want 0", s.TotalFrames())
	}
}

func TestSessionSingleFramePayloadCompletesTrivially(t *testing.T) {
	frameSize := 128
	payload := withMagic([]byte("one frame, well under a single frame's capacity"))
	dpf := frame.DataPerFrame(frameSize)

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected exactly 1 frame, got %d", len(frames))
	}

	s := scan.NewSession(dpf)
	got, complete := s.Submit(frame.DecodeFrame(frames[0], frameSize))
	if !complete {
		t.Fatal("single-frame payload should complete on the first submission")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled payload = %q, want %q", got, payload)
	}
}
