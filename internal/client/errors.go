package client

import "errors"

var (
	ErrClosed          = errors.New("session closed")
	ErrEmptyCommand    = errors.New("empty server command")
	ErrAlreadyAttached = errors.New("session already attached")
)
