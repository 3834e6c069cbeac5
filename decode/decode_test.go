package decode_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/mezinster/cimbar-go/decode"
	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/tuning"
	"github.com/mezinster/cimbar-go/wire"
)

func buildSingleFrame(t *testing.T, frameSize int, payload []byte) []byte {
	t.Helper()
	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	return frame.DecodeFrame(frames[0], frameSize)
}

func TestDecodeCameraCleanRenderHashPath(t *testing.T) {
	frameSize := 128
	payload := append(append([]byte(nil), wire.Magic[:]...), "cimbar decode camera path roundtrip"...)

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	cfg := tuning.Default()
	got, size, err := decode.DecodeCamera(frames[0], cfg)
	if err != nil {
		t.Fatalf("DecodeCamera: %v", err)
	}
	if size != frameSize {
		t.Fatalf("decoded frame size = %d, want %d", size, frameSize)
	}

	want := buildSingleFrame(t, frameSize, payload)
	if !bytes.Equal(got, want) {
		t.Fatalf("decoded bytes mismatch:\ngot  %x\nwant %x", got, want)
	}

	length, ok := wire.LooksLikeFrameZero(got, frame.DataPerFrame(frameSize))
	if !ok {
		t.Fatal("expected a valid frame-0 length prefix")
	}
	end := wire.LengthPrefixSize + int(length)
	if !bytes.Equal(got[wire.LengthPrefixSize:end], payload) {
		t.Fatalf("recovered payload = %q, want %q", got[wire.LengthPrefixSize:end], payload)
	}
}

func TestDecodeCameraFixedThresholdPath(t *testing.T) {
	frameSize := 128
	payload := []byte("fixed threshold camera decode path")

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	cfg := tuning.Default()
	cfg.UseHashDetection = false
	cfg.UseRelativeColor = false

	got, err := decode.DecodeCameraAtSize(frames[0], frameSize, cfg)
	if err != nil {
		t.Fatalf("DecodeCameraAtSize: %v", err)
	}

	want := buildSingleFrame(t, frameSize, payload)
	if !bytes.Equal(got, want) {
		t.Fatalf("decoded bytes mismatch:\ngot  %x\nwant %x", got, want)
	}
}

// embedWithMargin pastes src into the center of a larger canvas filled with
// a uniform bright background, simulating a photograph where the frame
// doesn't fill the whole image — the case cropWithPadding's translated
// finder coordinates exist to handle.
func embedWithMargin(src *image.RGBA, margin int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx()+2*margin, b.Dy()+2*margin
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.RGBA{R: 235, G: 235, B: 235, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, bg)
		}
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetRGBA(margin+x, margin+y, src.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func TestDecodeCameraWithPhotographMargin(t *testing.T) {
	frameSize := 128
	payload := []byte("margin regression: finder coords must track the crop origin")

	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	photo := embedWithMargin(frames[0], 40)

	cfg := tuning.Default()
	got, size, err := decode.DecodeCamera(photo, cfg)
	if err != nil {
		t.Fatalf("DecodeCamera: %v", err)
	}
	if size != frameSize {
		t.Fatalf("decoded frame size = %d, want %d", size, frameSize)
	}

	want := buildSingleFrame(t, frameSize, payload)
	if !bytes.Equal(got, want) {
		t.Fatalf("decoded bytes mismatch:\ngot  %x\nwant %x", got, want)
	}
}

func TestDecodeCameraUnlocatableImageFails(t *testing.T) {
	size := 128
	dark := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dark.SetRGBA(x, y, color.RGBA{R: 5, G: 5, B: 5, A: 255})
		}
	}

	cfg := tuning.Default()
	if _, _, err := decode.DecodeCamera(dark, cfg); err == nil {
		t.Fatal("expected an error when no bright region exists to anchor on")
	}
}
