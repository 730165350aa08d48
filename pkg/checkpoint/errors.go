package checkpoint

import "errors"

var (
	ErrShortHeader  = errors.New("checkpoint: header buffer too small")
	ErrShortRead    = errors.New("checkpoint: short read")
	ErrShortWrite   = errors.New("checkpoint: short write")
	ErrInvalidShape = errors.New("checkpoint: invalid tensor shape")
	ErrMismatch     = errors.New("checkpoint: converted file does not mirror source")
	ErrTrailingData = errors.New("checkpoint: trailing data after last tensor")
)
