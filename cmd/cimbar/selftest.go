package main

import (
	"bytes"
	"fmt"
	"image"
	"math/rand"

	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/rs"
	"github.com/mezinster/cimbar-go/wire"
)

type scenario struct {
	name string
	run  func() error
}

func cmdSelftest(args []string) error {
	scenarios := []scenario{
		{"non-dpf-aligned payload", scenarioNonAligned},
		{"dpf-aligned payload", scenarioAligned},
		{"tiny single-frame payload", scenarioTiny},
		{"symbol/color exhaustive", scenarioSymbolColor},
		{"RS correction at the boundary", scenarioRSBoundary},
		{"interleave spreading", scenarioInterleaveSpreading},
	}

	failures := 0
	for _, s := range scenarios {
		if err := s.run(); err != nil {
			fmt.Printf("FAIL  %s: %v\n", s.name, err)
			failures++
			continue
		}
		fmt.Printf("PASS  %s\n", s.name)
	}

	if failures > 0 {
		return fmt.Errorf("%d scenario(s) failed", failures)
	}
	return nil
}

func patternBytes(n int, gen func(k int) byte) []byte {
	out := make([]byte, n)
	for k := range out {
		out[k] = gen(k)
	}
	return out
}

func roundTrip(payload []byte, frameSize int) ([]byte, int, error) {
	frames, err := frame.EncodeStream(payload, frameSize)
	if err != nil {
		return nil, 0, err
	}
	got, err := frame.DecodeStream(frames, frameSize)
	if err != nil {
		return nil, 0, err
	}
	return got, len(frames), nil
}

func scenarioNonAligned() error {
	payload := patternBytes(37345, func(k int) byte { return byte((7*k + 13) % 256) })
	dpf := frame.DataPerFrame(256)
	wantFrames := (wire.LengthPrefixSize + len(payload) + dpf - 1) / dpf
	got, numFrames, err := roundTrip(payload, 256)
	if err != nil {
		return err
	}
	if numFrames != wantFrames {
		return fmt.Errorf("got %d frames, want %d", numFrames, wantFrames)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("recovered payload does not match input")
	}
	return nil
}

func scenarioAligned() error {
	dpf := frame.DataPerFrame(256)
	payload := patternBytes(3*dpf-4, func(k int) byte { return byte((3*k + 77) % 256) })
	got, numFrames, err := roundTrip(payload, 256)
	if err != nil {
		return err
	}
	if numFrames != 3 {
		return fmt.Errorf("got %d frames, want 3", numFrames)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("recovered payload does not match input")
	}
	return nil
}

func scenarioTiny() error {
	payload := make([]byte, 100)
	rand.New(rand.NewSource(42)).Read(payload)
	got, numFrames, err := roundTrip(payload, 128)
	if err != nil {
		return err
	}
	if numFrames != 1 {
		return fmt.Errorf("got %d frames, want 1", numFrames)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("recovered payload does not match input")
	}
	return nil
}

func scenarioSymbolColor() error {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for c := 0; c < 8; c++ {
		for s := 0; s < 16; s++ {
			frame.DrawCell(img, 64, 64, 8, c, s)
			gotC, gotS := frame.DetectCell(img, 64, 64, 8)
			if gotC != c || gotS != s {
				return fmt.Errorf("color=%d symbol=%d: detected color=%d symbol=%d", c, s, gotC, gotS)
			}
		}
	}
	return nil
}

func scenarioRSBoundary() error {
	message := patternBytes(rs.BlockData, func(k int) byte { return byte(k * 31) })
	codeword := rs.EncodeBlock(message)

	r := rand.New(rand.NewSource(7))

	flipped32 := flipRandomBytes(codeword, 32, r)
	decoded, err := rs.Decode(flipped32)
	if err != nil {
		return fmt.Errorf("32 errors: %w", err)
	}
	if !bytes.Equal(decoded, message) {
		return fmt.Errorf("32 errors: recovered message mismatch")
	}

	flipped33 := flipRandomBytes(codeword, 33, r)
	if _, err := rs.Decode(flipped33); err == nil {
		return fmt.Errorf("33 errors: expected decode failure, got success")
	}
	return nil
}

func flipRandomBytes(in []byte, n int, r *rand.Rand) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	idx := r.Perm(len(out))[:n]
	for _, i := range idx {
		out[i] ^= 0xFF
	}
	return out
}

func scenarioInterleaveSpreading() error {
	blockLens := []int{255, 255, 255}
	blocks := make([][]byte, 3)
	messages := make([][]byte, 3)
	for i := range blocks {
		messages[i] = patternBytes(rs.BlockData, func(k int) byte { return byte((k + i*17) % 256) })
		blocks[i] = rs.EncodeBlock(messages[i])
	}

	raw := frame.Interleave(blocks)
	for i := 0; i < 64; i++ {
		raw[i] ^= 0xFF
	}

	deinterleaved := frame.DeInterleave(raw, blockLens)
	for i, b := range deinterleaved {
		decoded, err := rs.Decode(b)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if !bytes.Equal(decoded, messages[i]) {
			return fmt.Errorf("block %d: recovered message mismatch", i)
		}
	}
	return nil
}
