// Package scan implements component G: the live-scan assembler that turns a
// stream of independently decoded camera frames into one byte stream, via
// content-addressed deduplication and adjacency-chain ordering rather than
// any in-band frame index (spec §4.G).
package scan

import (
	"hash/fnv"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/wire"
)

// hashPrefixLen is how much of a decoded frame's leading bytes the
// content-address hash covers (spec §4.G: "FNV-1a-64(first 64 decoded
// bytes)").
const hashPrefixLen = 64

// Session holds the single-threaded assembler state of spec §4.G:
// frames_by_hash, adjacency, the running prev_hash, and the optional
// frame_zero_hash/total_frames pair once frame 0 has been recognized. It is
// not safe for concurrent use — callers run decode workers on a pool and
// feed results back to one Session from a single goroutine (spec §5).
type Session struct {
	ID uuid.UUID

	dpf int

	framesByHash map[uint64][]byte
	adjacency    map[uint64]uint64

	prevHash uint64
	havePrev bool

	frameZeroHash uint64
	haveFrameZero bool
	payloadLength uint32
	totalFrames   int
}

// NewSession starts an empty assembler for a stream whose frames each carry
// dpf data-payload bytes (spec §3 "dpf"), needed to validate a candidate
// frame-0's length prefix and compute total_frames.
func NewSession(dpf int) *Session {
	return &Session{
		ID:           uuid.New(),
		dpf:          dpf,
		framesByHash: make(map[uint64][]byte),
		adjacency:    make(map[uint64]uint64),
	}
}

func contentHash(decoded []byte) uint64 {
	n := len(decoded)
	if n > hashPrefixLen {
		n = hashPrefixLen
	}
	h := fnv.New64a()
	h.Write(decoded[:n])
	return h.Sum64()
}

// Submit records one decoded frame's bytes (spec §4.G step 1: dedup by
// content hash, extend the adjacency chain, probe for frame 0), then checks
// for completion. It returns the reassembled payload and true once the
// adjacency chain from frame_zero_hash has visited exactly total_frames
// distinct hashes; submitting an already-seen frame is a no-op on state but
// still re-checks completion, so out-of-order duplicate delivery cannot
// wedge the session.
func (s *Session) Submit(decoded []byte) ([]byte, bool) {
	h := contentHash(decoded)

	if _, seen := s.framesByHash[h]; !seen {
		stored := make([]byte, len(decoded))
		copy(stored, decoded)
		s.framesByHash[h] = stored

		if s.havePrev {
			s.adjacency[s.prevHash] = h
		}
		s.prevHash = h
		s.havePrev = true

		if !s.haveFrameZero {
			if length, ok := wire.LooksLikeFrameZero(decoded, s.dpf); ok {
				s.frameZeroHash = h
				s.haveFrameZero = true
				s.payloadLength = length
				s.totalFrames = (int(length) + s.dpf - 1) / s.dpf
				if s.totalFrames == 0 {
					s.totalFrames = 1
				}
			}
		}
	}

	return s.tryComplete()
}

// tryComplete walks the adjacency chain from frame_zero_hash (spec §4.G
// step 2). A chain that dead-ends before reaching total_frames distinct
// hashes is merely incomplete, not an error — Submit is called again as
// more frames arrive.
func (s *Session) tryComplete() ([]byte, bool) {
	if !s.haveFrameZero {
		return nil, false
	}

	hashes := make([]uint64, 0, s.totalFrames)
	seen := make(map[uint64]bool, s.totalFrames)
	cur := s.frameZeroHash
	hashes = append(hashes, cur)
	seen[cur] = true

	for len(hashes) < s.totalFrames {
		next, ok := s.adjacency[cur]
		if !ok || seen[next] {
			return nil, false
		}
		hashes = append(hashes, next)
		seen[next] = true
		cur = next
	}

	buf := make([]byte, 0, len(hashes)*s.dpf)
	for _, h := range hashes {
		buf = append(buf, s.framesByHash[h]...)
	}

	end := wire.LengthPrefixSize + int(s.payloadLength)
	if end > len(buf) {
		return nil, false
	}
	return buf[wire.LengthPrefixSize:end], true
}

// Reset discards all assembler state, starting a fresh chain under the same
// Session identity.
func (s *Session) Reset() {
	s.framesByHash = make(map[uint64][]byte)
	s.adjacency = make(map[uint64]uint64)
	s.prevHash = 0
	s.havePrev = false
	s.haveFrameZero = false
	s.frameZeroHash = 0
	s.payloadLength = 0
	s.totalFrames = 0
}

// Snapshot returns the sorted set of content hashes currently known, for
// progress reporting (spec's "printing progress as the adjacency chain
// grows").
func (s *Session) Snapshot() []uint64 {
	keys := maps.Keys(s.framesByHash)
	slices.Sort(keys)
	return keys
}

// Err reports cerrors.ErrIncompleteChain when frame_zero has been
// recognized but the adjacency chain has not yet reached total_frames —
// the "keep collecting, not a failure" state of spec §7's error table. It
// is nil both before frame_zero is known and once assembly completes.
func (s *Session) Err() error {
	if !s.haveFrameZero {
		return nil
	}
	if _, complete := s.tryComplete(); !complete {
		return cerrors.ErrIncompleteChain
	}
	return nil
}

// FramesSeen reports how many distinct frames have been recorded so far.
func (s *Session) FramesSeen() int {
	return len(s.framesByHash)
}

// TotalFrames reports the expected chain length once frame 0 has been
// recognized, or 0 if it has not.
func (s *Session) TotalFrames() int {
	return s.totalFrames
}
