package session

import "errors"

var (
	// ErrNoSession indicates no interpreter subprocess exists.
	ErrNoSession = errors.New("no interpreter session")
	// ErrNotReady indicates the subprocess has not reported readiness yet.
	ErrNotReady = errors.New("interpreter session not ready")
	// ErrBusy indicates another command is still awaiting its result.
	ErrBusy = errors.New("a command is already running")
)
