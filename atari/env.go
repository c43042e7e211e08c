// Package atari adapts a multi-player arcade emulator to the env contract.
//
// Agents act in a fixed round-robin order. Each Step buffers one action; once
// every player has submitted, the buffer is flushed to the emulator in roster
// order and the per-player rewards are published.
package atari

import (
	"fmt"
	"image"
	"math/rand/v2"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/turnenv/env"
)

// Env is the simultaneous-action coordinator.
type Env struct {
	cfg  Config
	emu  Emulator
	log  logrus.FieldLogger
	seed uint32
	mode int

	agents      []env.AgentID
	actionSet   []Action
	actionSpace env.Discrete
	obsSpace    env.Box
	width       int
	height      int

	selector *env.Selector
	surface  *env.Surface

	resetDone bool
	episode   int
	pending   []Action
	cursor    env.AgentID
	rewards   map[env.AgentID]float64
	dones     map[env.AgentID]bool
	infos     map[env.AgentID]env.Info
}

var _ env.Env = (*Env)(nil)

// New configures emu for game and returns a coordinator. Missing ROMs and
// unsupported modes fail here, before any episode starts.
func New(emu Emulator, game string, numPlayers int, opts ...Option) (*Env, error) {
	cfg := defaultConfig(game, numPlayers)
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if emu == nil {
		return nil, fmt.Errorf("%w: emulator is nil", env.ErrConfig)
	}

	romPath, err := LocateROM(cfg.ROMRoot, cfg.Game)
	if err != nil {
		return nil, err
	}

	seed := rand.Uint32()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	if err := emu.SetInt(KeyRandomSeed, int(seed)); err != nil {
		return nil, fmt.Errorf("set %s: %w", KeyRandomSeed, err)
	}
	if err := emu.SetInt(KeyFrameSkip, cfg.FrameSkip); err != nil {
		return nil, fmt.Errorf("set %s: %w", KeyFrameSkip, err)
	}
	if err := emu.SetFloat(KeyRepeatActionProbability, cfg.RepeatActionProbability); err != nil {
		return nil, fmt.Errorf("set %s: %w", KeyRepeatActionProbability, err)
	}
	if err := emu.LoadROM(romPath); err != nil {
		return nil, fmt.Errorf("load rom %s: %w", romPath, err)
	}

	mode, err := selectMode(emu, cfg)
	if err != nil {
		return nil, err
	}
	if err := emu.SetMode(mode); err != nil {
		return nil, fmt.Errorf("set mode %d: %w", mode, err)
	}

	e := &Env{
		cfg:     cfg,
		emu:     emu,
		seed:    seed,
		mode:    mode,
		agents:  env.Roster(cfg.NumPlayers),
		surface: env.NewSurface(cfg.Display),
	}
	e.log = cfg.Logger.WithFields(logrus.Fields{"env": cfg.Game, "players": cfg.NumPlayers})

	if cfg.FullActionSpace {
		e.actionSet = make([]Action, NumFullActions)
		for i := range e.actionSet {
			e.actionSet[i] = Action(i)
		}
	} else {
		e.actionSet = slices.Clone(emu.MinimalActionSet())
		if len(e.actionSet) == 0 {
			return nil, fmt.Errorf("%w: emulator reports an empty minimal action set", env.ErrConfig)
		}
	}
	e.actionSpace = env.Discrete{N: len(e.actionSet)}

	e.width, e.height = emu.ScreenDims()
	if cfg.ObsType == ObsRAM {
		e.obsSpace = env.NewBox(0, 255, []int{RAMSize}, env.Uint8)
	} else {
		e.obsSpace = env.NewBox(0, 255, []int{e.height, e.width, 3}, env.Uint8)
	}

	e.selector = env.NewSelector(e.agents)
	e.rewards = make(map[env.AgentID]float64, len(e.agents))
	e.dones = make(map[env.AgentID]bool, len(e.agents))
	e.infos = make(map[env.AgentID]env.Info, len(e.agents))
	for _, a := range e.agents {
		e.infos[a] = env.Info{}
	}

	e.log.WithFields(logrus.Fields{"mode": mode, "seed": seed, "actions": e.actionSpace.N}).Debug("emulator configured")
	return e, nil
}

// selectMode picks the first available mode unless one was requested, in
// which case it must be among the available modes.
func selectMode(emu Emulator, cfg Config) (int, error) {
	modes, err := emu.AvailableModes(cfg.NumPlayers)
	if err != nil {
		return 0, fmt.Errorf("available modes: %w", err)
	}
	if cfg.Mode == nil {
		if len(modes) == 0 {
			return 0, fmt.Errorf("%w: no modes support %d players", env.ErrInvalidMode, cfg.NumPlayers)
		}
		return modes[0], nil
	}
	if !slices.Contains(modes, *cfg.Mode) {
		return 0, fmt.Errorf("%w: mode %d, only %v are supported", env.ErrInvalidMode, *cfg.Mode, modes)
	}
	return *cfg.Mode, nil
}

func (e *Env) Name() string { return e.cfg.Game }

func (e *Env) NumAgents() int { return len(e.agents) }

func (e *Env) Agents() []env.AgentID { return slices.Clone(e.agents) }

// Seed returns the seed handed to the emulator.
func (e *Env) Seed() uint32 { return e.seed }

// Mode returns the game mode in effect.
func (e *Env) Mode() int { return e.mode }

func (e *Env) knows(agent env.AgentID) bool { return slices.Contains(e.agents, agent) }

func (e *Env) ActionSpace(agent env.AgentID) (env.Discrete, error) {
	if !e.knows(agent) {
		return env.Discrete{}, fmt.Errorf("%w: %q", env.ErrUnknownAgent, agent)
	}
	return e.actionSpace, nil
}

func (e *Env) ObservationSpace(agent env.AgentID) (env.Box, error) {
	if !e.knows(agent) {
		return env.Box{}, fmt.Errorf("%w: %q", env.ErrUnknownAgent, agent)
	}
	return e.obsSpace.Clone(), nil
}

func (e *Env) Reset(observe bool) (*env.Observation, error) {
	if err := e.emu.ResetGame(); err != nil {
		return nil, err
	}
	e.cursor = e.selector.Reset()
	for _, a := range e.agents {
		e.rewards[a] = 0
		e.dones[a] = false
		e.infos[a] = env.Info{}
	}
	e.pending = e.pending[:0]
	e.resetDone = true
	e.episode++
	e.log.WithField("episode", e.episode).Info("episode reset")

	if !observe {
		return nil, nil
	}
	return e.Observe(e.cursor)
}

// Observe returns the shared screen (or RAM) regardless of agent.
func (e *Env) Observe(agent env.AgentID) (*env.Observation, error) {
	if !e.resetDone {
		return nil, env.ErrNotReset
	}
	if !e.knows(agent) {
		return nil, fmt.Errorf("%w: %q", env.ErrUnknownAgent, agent)
	}
	if e.cfg.ObsType == ObsRAM {
		return &env.Observation{Shape: []int{RAMSize}, U8: slices.Clone(e.emu.RAM())}, nil
	}
	return &env.Observation{Shape: []int{e.height, e.width, 3}, U8: slices.Clone(e.emu.ScreenRGB())}, nil
}

func (e *Env) Step(action int, observe bool) (*env.Observation, error) {
	if !e.resetDone {
		return nil, env.ErrNotReset
	}
	if env.AllDone(e.dones) {
		return nil, env.ErrEpisodeDone
	}
	if !e.actionSpace.Contains(action) {
		return nil, fmt.Errorf("%w: %d not in %s for %s", env.ErrInvalidAction, action, e.actionSpace, e.cursor)
	}

	e.pending = append(e.pending, e.actionSet[action])
	if len(e.pending) == len(e.agents) {
		if err := e.flush(); err != nil {
			return nil, err
		}
	}
	e.cursor = e.selector.Next()

	if !observe {
		return nil, nil
	}
	return e.Observe(e.cursor)
}

// flush hands the full action batch to the emulator. Agent i's action is at
// position i; rewards come back in the same order.
func (e *Env) flush() error {
	rewards, err := e.emu.Act(e.pending)
	e.pending = e.pending[:0]
	if err != nil {
		return err
	}
	if len(rewards) != len(e.agents) {
		return fmt.Errorf("emulator returned %d rewards for %d players", len(rewards), len(e.agents))
	}
	for i, a := range e.agents {
		e.rewards[a] = rewards[i]
	}
	over := e.emu.GameOver()
	if over {
		for _, a := range e.agents {
			e.dones[a] = true
		}
	}
	e.log.WithFields(logrus.Fields{"episode": e.episode, "rewards": rewards, "over": over}).Debug("actions flushed")
	return nil
}

// PendingActions is the number of actions buffered since the last flush.
func (e *Env) PendingActions() int { return len(e.pending) }

func (e *Env) Render() (image.Image, error) {
	frame, err := frameImage(e.emu.ScreenRGB(), e.width, e.height)
	if err != nil {
		return nil, err
	}
	if err := e.surface.Acquire(e.width, e.height); err != nil {
		return nil, err
	}
	if err := e.surface.Present(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (e *Env) Close() error {
	return e.surface.Release()
}

func (e *Env) AgentSelection() env.AgentID { return e.cursor }

func (e *Env) Rewards() map[env.AgentID]float64 { return env.CopyRewards(e.rewards) }

func (e *Env) Dones() map[env.AgentID]bool { return env.CopyDones(e.dones) }

func (e *Env) Infos() map[env.AgentID]env.Info { return env.CopyInfos(e.infos) }

// frameImage converts a packed RGB buffer into an RGBA image.
func frameImage(rgb []uint8, width, height int) (*image.RGBA, error) {
	if len(rgb) != width*height*3 {
		return nil, fmt.Errorf("screen buffer has %d bytes, want %d for %dx%d", len(rgb), width*height*3, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for px := 0; px < width*height; px++ {
		img.Pix[px*4] = rgb[px*3]
		img.Pix[px*4+1] = rgb[px*3+1]
		img.Pix[px*4+2] = rgb[px*3+2]
		img.Pix[px*4+3] = 0xFF
	}
	return img, nil
}
