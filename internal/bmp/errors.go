package bmp

import "errors"

var (
	errShortHeader   = errors.New("truncated BMP header")
	errBadSignature  = errors.New("signature is not 'BM'")
	errBadBitDepth   = errors.New("bit depth is not 24")
	errBadDimensions = errors.New("width/height must be positive")
	errRowRangeOOB   = errors.New("row range out of bounds")
	errShortRead     = errors.New("short read")
)
