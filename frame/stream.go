package frame

import (
	"image"

	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/wire"
)

// EncodeStream is spec §4.C's top-level encode: prepend the 4-byte length
// prefix, split into dpf-sized chunks (the last zero-padded), and render one
// RGBA bitmap per chunk.
func EncodeStream(encryptedBytes []byte, frameSize int) ([]*image.RGBA, error) {
	if err := ValidateFrameSize(frameSize); err != nil {
		return nil, err
	}
	dpf := DataPerFrame(frameSize)

	prefix := wire.PutLengthPrefix(uint32(len(encryptedBytes)))
	stream := make([]byte, 0, wire.LengthPrefixSize+len(encryptedBytes))
	stream = append(stream, prefix[:]...)
	stream = append(stream, encryptedBytes...)

	numFrames := (len(stream) + dpf - 1) / dpf
	if numFrames == 0 {
		numFrames = 1
	}
	padded := make([]byte, numFrames*dpf)
	copy(padded, stream)

	frames := make([]*image.RGBA, numFrames)
	for i := 0; i < numFrames; i++ {
		chunk := padded[i*dpf : (i+1)*dpf]
		frames[i] = EncodeFrame(chunk, frameSize)
	}
	return frames, nil
}

// DecodeStream is the inverse of EncodeStream for a lossless (already
// correctly ordered) frame sequence: decode every frame, concatenate, strip
// the length prefix and zero padding.
func DecodeStream(frames []*image.RGBA, frameSize int) ([]byte, error) {
	if err := ValidateFrameSize(frameSize); err != nil {
		return nil, err
	}
	raw := make([]byte, 0, len(frames)*DataPerFrame(frameSize))
	for _, f := range frames {
		raw = append(raw, DecodeFrame(f, frameSize)...)
	}
	if len(raw) < wire.LengthPrefixSize {
		return nil, cerrors.ErrBadLengthPrefix
	}
	length := wire.ReadLengthPrefix(raw)
	end := wire.LengthPrefixSize + int(length)
	if end > len(raw) {
		return nil, cerrors.ErrBadLengthPrefix
	}
	return raw[wire.LengthPrefixSize:end], nil
}
