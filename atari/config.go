package atari

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/turnenv/env"
)

// ObsType selects the observation an agent receives.
type ObsType string

const (
	ObsImage ObsType = "image"
	ObsRAM   ObsType = "ram"
)

// Config holds construction parameters for a simultaneous-action environment.
type Config struct {
	Game       string
	NumPlayers int
	// Mode is the requested game mode; nil selects the first available mode.
	Mode *int
	// Seed is the emulator seed; nil draws a fresh 32-bit seed.
	Seed                    *uint32
	ObsType                 ObsType
	FrameSkip               int
	RepeatActionProbability float64
	FullActionSpace         bool
	// ROMRoot is the directory holding ROM/<game>/<game>.bin.
	ROMRoot string
	Display env.DisplayOpener
	Logger  logrus.FieldLogger
}

// Option mutates a Config.
type Option func(*Config)

func defaultConfig(game string, numPlayers int) Config {
	return Config{
		Game:                    game,
		NumPlayers:              numPlayers,
		ObsType:                 ObsImage,
		FrameSkip:               3,
		RepeatActionProbability: 0.25,
		FullActionSpace:         true,
		ROMRoot:                 ".",
		Logger:                  logrus.StandardLogger(),
	}
}

func WithMode(mode int) Option {
	return func(c *Config) { c.Mode = &mode }
}

func WithSeed(seed uint32) Option {
	return func(c *Config) { c.Seed = &seed }
}

func WithObsType(t ObsType) Option {
	return func(c *Config) { c.ObsType = t }
}

func WithFrameSkip(n int) Option {
	return func(c *Config) { c.FrameSkip = n }
}

func WithRepeatActionProbability(p float64) Option {
	return func(c *Config) { c.RepeatActionProbability = p }
}

// WithMinimalActionSet restricts the action space to the game's native actions.
func WithMinimalActionSet() Option {
	return func(c *Config) { c.FullActionSpace = false }
}

func WithROMRoot(dir string) Option {
	return func(c *Config) { c.ROMRoot = dir }
}

// WithDisplay enables Render presentation through the given backend.
func WithDisplay(open env.DisplayOpener) Option {
	return func(c *Config) { c.Display = open }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Config) { c.Logger = l }
}

func (c *Config) validate() error {
	if c.Game == "" {
		return fmt.Errorf("%w: game name is empty", env.ErrConfig)
	}
	if c.ObsType != ObsImage && c.ObsType != ObsRAM {
		return fmt.Errorf("%w: obs type must be %q or %q, got %q", env.ErrConfig, ObsImage, ObsRAM, c.ObsType)
	}
	if c.NumPlayers < 1 {
		return fmt.Errorf("%w: num players must be positive, got %d", env.ErrConfig, c.NumPlayers)
	}
	if c.FrameSkip < 1 {
		return fmt.Errorf("%w: frame skip must be positive, got %d", env.ErrConfig, c.FrameSkip)
	}
	if c.RepeatActionProbability < 0 || c.RepeatActionProbability > 1 {
		return fmt.Errorf("%w: repeat action probability %g outside [0, 1]", env.ErrConfig, c.RepeatActionProbability)
	}
	return nil
}
