package spritefix

import "errors"

var (
	// ErrNilImage is returned when a stage receives no pixel buffer.
	ErrNilImage = errors.New("spritefix: nil image")
	// ErrInvalidTolerance is returned for tolerance <= 0.
	ErrInvalidTolerance = errors.New("spritefix: tolerance must be > 0")
	// ErrInvalidGrid is returned for non-positive grid counts or sheet
	// dimensions that do not divide evenly into frames.
	ErrInvalidGrid = errors.New("spritefix: invalid grid")
	// ErrInvalidSize is returned for non-positive resize targets.
	ErrInvalidSize = errors.New("spritefix: invalid size")
)
