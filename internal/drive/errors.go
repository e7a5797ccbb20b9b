package drive

import "errors"

// Domain errors for drive operations.
var (
	ErrNotFound          = errors.New("file not found")
	ErrContainerNotFound = errors.New("container not found")
	ErrDuplicate         = errors.New("file already exists")
	ErrInvalidName       = errors.New("invalid name")
	ErrCollision         = errors.New("target name already exists")
)
