package frame_test

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mezinster/cimbar-go/frame"
)

func TestSymbolColorExhaustive(t *testing.T) {
	for colorIdx := 0; colorIdx < 8; colorIdx++ {
		for symbolIdx := 0; symbolIdx < 16; symbolIdx++ {
			img := image.NewRGBA(image.Rect(0, 0, 128, 128))
			frame.DrawCell(img, 64, 64, frame.CellSize, colorIdx, symbolIdx)
			gotColor, gotSymbol := frame.DetectCell(img, 64, 64, frame.CellSize)
			if gotColor != colorIdx || gotSymbol != symbolIdx {
				t.Fatalf("color=%d symbol=%d: detected color=%d symbol=%d", colorIdx, symbolIdx, gotColor, gotSymbol)
			}
		}
	}
}

func TestInterleaveIsInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	lens := []int{255, 255, 130}
	blocks := make([][]byte, len(lens))
	for i, l := range lens {
		blocks[i] = make([]byte, l)
		rng.Read(blocks[i])
	}
	raw := frame.Interleave(blocks)
	got := frame.DeInterleave(raw, lens)
	require.Equal(t, blocks, got)
}

func TestBlockLayoutSumsToRaw(t *testing.T) {
	for _, size := range frame.SupportedSizes {
		lens, dpf := frame.BlockLayout(size)
		sum := 0
		wantDpf := 0
		for _, l := range lens {
			sum += l
			wantDpf += l - 64
		}
		require.Equal(t, frame.RawBytesPerFrame(size), sum)
		require.Equal(t, wantDpf, dpf)
	}
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	for _, size := range frame.SupportedSizes {
		dpf := frame.DataPerFrame(size)
		chunk := make([]byte, dpf)
		for i := range chunk {
			chunk[i] = byte((7*i + 13) % 256)
		}
		img := frame.EncodeFrame(chunk, size)
		got := frame.DecodeFrame(img, size)
		require.Equal(t, chunk, got, "frame size %d", size)
	}
}

func TestEncodeDecodeStreamNonAligned(t *testing.T) {
	size := 256
	dpf := frame.DataPerFrame(size)
	payload := make([]byte, 37345)
	for i := range payload {
		payload[i] = byte((7*i + 13) % 256)
	}
	frames, err := frame.EncodeStream(payload, size)
	require.NoError(t, err)

	wantFrames := (4 + len(payload) + dpf - 1) / dpf
	require.Equal(t, wantFrames, len(frames))

	imgs := make([]*image.RGBA, len(frames))
	copy(imgs, frames)
	got, err := frame.DecodeStream(imgs, size)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestEncodeDecodeStreamAligned(t *testing.T) {
	size := 256
	dpf := frame.DataPerFrame(size)
	payload := make([]byte, 3*dpf-4)
	for i := range payload {
		payload[i] = byte((3*i + 77) % 256)
	}
	frames, err := frame.EncodeStream(payload, size)
	require.NoError(t, err)
	require.Equal(t, 3, len(frames))

	got, err := frame.DecodeStream(frames, size)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestTinySingleFramePayload(t *testing.T) {
	payload := make([]byte, 100)
	rand.New(rand.NewSource(7)).Read(payload)

	frames, err := frame.EncodeStream(payload, 128)
	require.NoError(t, err)
	require.Equal(t, 1, len(frames))

	got, err := frame.DecodeStream(frames, 128)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestUnsupportedFrameSize(t *testing.T) {
	_, err := frame.EncodeStream([]byte("x"), 100)
	require.Error(t, err)
}
