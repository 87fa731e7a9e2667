package driverpack

import "errors"

var (
	ErrNoFactory = errors.New("no factory registered for key")
	ErrCycle     = errors.New("factory dependency cycle")
)
