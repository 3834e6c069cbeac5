package cimbar_test

import (
	"bytes"
	"testing"

	"github.com/mezinster/cimbar-go/cimbar"
	"github.com/mezinster/cimbar-go/tuning"
	"github.com/mezinster/cimbar-go/wire"
)

// withMagic prefixes body with wire.Magic, as every encrypted payload is, so
// that frame 0 passes the length-prefix-and-magic check.
func withMagic(body []byte) []byte {
	return append(append([]byte(nil), wire.Magic[:]...), body...)
}

func TestEncodeDecodePhotoRoundTrip(t *testing.T) {
	frameSize := 128
	payload := withMagic([]byte("encrypted-bytes-stand-in, round trip through cimbar.Encode/DecodePhoto"))

	frames, err := cimbar.Encode(payload, frameSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected a single frame for this payload size, got %d", len(frames))
	}

	got, err := cimbar.DecodePhoto(frames[0], tuning.Default())
	if err != nil {
		t.Fatalf("DecodePhoto: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("DecodePhoto = %q, want %q", got, payload)
	}
}

func TestLiveSessionAssemblesMultiFramePayload(t *testing.T) {
	frameSize := 128
	payload := withMagic(bytes.Repeat([]byte("multi-frame-live-scan-payload-"), 60))

	frames, err := cimbar.Encode(payload, frameSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected multiple frames for this payload size, got %d", len(frames))
	}

	session := cimbar.NewLiveSession(tuning.Default())
	var got []byte
	var complete bool
	for _, img := range frames {
		got, complete, err = session.Submit(img)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if complete {
			break
		}
	}
	if !complete {
		t.Fatal("live session never completed")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled payload = %q, want %q", got, payload)
	}
}

func TestLiveSessionCancelIgnoresFurtherSubmissions(t *testing.T) {
	frameSize := 128
	payload := []byte("cancel then submit")

	frames, err := cimbar.Encode(payload, frameSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	session := cimbar.NewLiveSession(tuning.Default())
	session.Cancel()
	_, complete, err := session.Submit(frames[0])
	if err != nil {
		t.Fatalf("Submit after Cancel returned an error: %v", err)
	}
	if complete {
		t.Fatal("a cancelled session must not report completion")
	}
	if session.FramesSeen() != 0 {
		t.Fatalf("FramesSeen after cancel = %d, want 0", session.FramesSeen())
	}
}

func TestLiveSessionResetStartsFresh(t *testing.T) {
	frameSize := 128
	payload := withMagic([]byte("reset then resubmit, long enough for a valid length prefix"))

	frames, err := cimbar.Encode(payload, frameSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	session := cimbar.NewLiveSession(tuning.Default())
	if _, _, err := session.Submit(frames[0]); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	session.Reset()
	if session.FramesSeen() != 0 {
		t.Fatalf("FramesSeen after Reset = %d, want 0", session.FramesSeen())
	}

	got, complete, err := session.Submit(frames[0])
	if err != nil {
		t.Fatalf("Submit after Reset: %v", err)
	}
	if !complete {
		t.Fatal("expected completion on resubmission after Reset")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("assembled payload = %q, want %q", got, payload)
	}
}
