package physics

import "errors"

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrTooManyVertices = errors.New("too many vertices")
	ErrInvalidIndex    = errors.New("index out of range")
	ErrNilCollider     = errors.New("nil collider")
)
