package format

import "errors"

var (
	ErrBadMagic   = errors.New("bad tile magic")
	ErrBadVersion = errors.New("unsupported tile version")
	ErrTruncated  = errors.New("truncated tile data")
	ErrBadPoly    = errors.New("invalid polygon record")
	ErrBadParams  = errors.New("invalid navmesh params")
)
