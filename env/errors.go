package env

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a fatal configuration problem detected at construction.
	ErrConfig = errors.New("invalid environment configuration")
	// ErrROMNotInstalled is returned when the ROM file for a game is missing.
	ErrROMNotInstalled = fmt.Errorf("%w: rom not installed", ErrConfig)
	// ErrInvalidMode is returned when a requested game mode is not available.
	ErrInvalidMode = fmt.Errorf("%w: unsupported mode", ErrConfig)

	ErrNotReset          = errors.New("environment has not been reset")
	ErrInvalidAction     = errors.New("action outside of action space")
	ErrEpisodeDone       = errors.New("episode is over, call Reset")
	ErrUnknownAgent      = errors.New("unknown agent")
	ErrRenderUnsupported = errors.New("render is not supported by this environment")
)
