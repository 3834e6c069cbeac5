// Package cerrors collects the sentinel errors surfaced across the CimBar
// frame codec, following the same "errors as values" convention the rest of
// the codec uses for its per-package error sets.
package cerrors

import "errors"

var (
	// ErrUnsupportedFrameSize is returned when a requested frame size is not
	// one of the wire-format constants {128, 192, 256, 384}.
	ErrUnsupportedFrameSize = errors.New("cimbar: unsupported frame size")

	// ErrRSBlockFailure indicates a Reed-Solomon block had more than 32 byte
	// errors and could not be corrected.
	ErrRSBlockFailure = errors.New("cimbar: reed-solomon block failure")

	// ErrQualityGateFailure indicates a decoded frame's first 64 raw bytes
	// were all zero, the signature of a fully-failed RS pass.
	ErrQualityGateFailure = errors.New("cimbar: quality gate failure")

	// ErrFinderNotFound indicates fewer than two finder patterns were
	// located in a photo.
	ErrFinderNotFound = errors.New("cimbar: finder patterns not found")

	// ErrWarpDegenerate indicates the perspective transform's linear system
	// was singular.
	ErrWarpDegenerate = errors.New("cimbar: perspective warp is degenerate")

	// ErrBadLengthPrefix indicates a candidate frame-0 failed the length
	// prefix or magic validation.
	ErrBadLengthPrefix = errors.New("cimbar: bad length prefix")

	// ErrIncompleteChain indicates the live-scan adjacency chain has not yet
	// visited every expected frame.
	ErrIncompleteChain = errors.New("cimbar: incomplete adjacency chain")

	// ErrAllStrategiesFailed indicates every decode strategy in the chain
	// failed the quality gate for a single-frame photo decode.
	ErrAllStrategiesFailed = errors.New("cimbar: all decode strategies failed")
)
