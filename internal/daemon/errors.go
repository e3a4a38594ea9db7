package daemon

import "errors"

// Construction and lifecycle errors of the API daemon.
var (
	ErrMissingLogger     = errors.New("daemon: logger is required")
	ErrMissingHandler    = errors.New("daemon: http handler is required")
	ErrMissingManager    = errors.New("daemon: server manager is required")
	ErrManagerNotStarted = errors.New("daemon: shutdown before start")
)
