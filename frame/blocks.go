package frame

import "github.com/mezinster/cimbar-go/rs"

// BlockLayout computes the fixed RS block layout for a frame_size: while
// raw-emitted > ECC, allocate a block of min(255, raw-emitted) total bytes
// (spec §3 "RS block layout"). It returns each block's total codeword
// length L_i and dpf = sum(L_i - ECC), the usable data bytes per frame.
// The layout depends only on frame_size, so callers may cache it.
func BlockLayout(frameSize int) (blockLens []int, dpf int) {
	raw := RawBytesPerFrame(frameSize)
	emitted := 0
	for raw-emitted > rs.ECC {
		l := raw - emitted
		if l > rs.BlockTotal {
			l = rs.BlockTotal
		}
		blockLens = append(blockLens, l)
		emitted += l
		dpf += l - rs.ECC
	}
	return blockLens, dpf
}

// DataPerFrame returns dpf for frameSize, the number of encrypted-payload
// bytes one frame can carry after RS overhead.
func DataPerFrame(frameSize int) int {
	_, dpf := BlockLayout(frameSize)
	return dpf
}
