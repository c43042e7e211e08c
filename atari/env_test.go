package atari

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/turnenv/env"
)

// fakeEmulator scripts rewards and game-over per Act call.
type fakeEmulator struct {
	ints    map[string]int
	floats  map[string]float64
	rom     string
	modes   []int
	mode    int
	minimal []Action
	w, h    int
	resets  int
	acts    [][]Action
	rewards [][]float64
	overAt  int // GameOver becomes true after this many Act calls; 0 = never
	actErr  error
	romErr  error
	screen  []uint8
	ram     []uint8
}

func newFakeEmulator() *fakeEmulator {
	f := &fakeEmulator{
		ints:    map[string]int{},
		floats:  map[string]float64{},
		modes:   []int{1, 3, 5},
		minimal: []Action{Noop, Fire, Up, Down},
		w:       4,
		h:       2,
		ram:     make([]uint8, RAMSize),
	}
	f.screen = make([]uint8, f.w*f.h*3)
	for i := range f.screen {
		f.screen[i] = uint8(i)
	}
	for i := range f.ram {
		f.ram[i] = uint8(255 - i)
	}
	return f
}

func (f *fakeEmulator) SetInt(k string, v int) error       { f.ints[k] = v; return nil }
func (f *fakeEmulator) SetFloat(k string, v float64) error { f.floats[k] = v; return nil }
func (f *fakeEmulator) LoadROM(p string) error {
	if f.romErr != nil {
		return f.romErr
	}
	f.rom = p
	return nil
}
func (f *fakeEmulator) AvailableModes(int) ([]int, error) { return f.modes, nil }
func (f *fakeEmulator) SetMode(m int) error              { f.mode = m; return nil }
func (f *fakeEmulator) MinimalActionSet() []Action       { return f.minimal }
func (f *fakeEmulator) ScreenDims() (int, int)           { return f.w, f.h }
func (f *fakeEmulator) ResetGame() error {
	f.resets++
	f.acts = nil
	return nil
}

func (f *fakeEmulator) Act(actions []Action) ([]float64, error) {
	if f.actErr != nil {
		return nil, f.actErr
	}
	f.acts = append(f.acts, append([]Action(nil), actions...))
	i := len(f.acts) - 1
	if i < len(f.rewards) {
		return f.rewards[i], nil
	}
	return make([]float64, len(actions)), nil
}

func (f *fakeEmulator) GameOver() bool    { return f.overAt > 0 && len(f.acts) >= f.overAt }
func (f *fakeEmulator) ScreenRGB() []uint8 { return f.screen }
func (f *fakeEmulator) RAM() []uint8       { return f.ram }

func installROM(t *testing.T, game string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "ROM", game)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, game+".bin"), []byte{0xA9}, 0o644))
	return root
}

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func newTestEnv(t *testing.T, emu *fakeEmulator, players int, opts ...Option) *Env {
	t.Helper()
	root := installROM(t, "pong")
	opts = append([]Option{WithROMRoot(root), WithSeed(7), WithLogger(quietLogger())}, opts...)
	e, err := New(emu, "pong", players, opts...)
	require.NoError(t, err)
	return e
}

func TestNewConfiguresEmulator(t *testing.T) {
	emu := newFakeEmulator()
	e := newTestEnv(t, emu, 2)

	assert.Equal(t, 7, emu.ints[KeyRandomSeed])
	assert.Equal(t, 3, emu.ints[KeyFrameSkip])
	assert.Equal(t, 0.25, emu.floats[KeyRepeatActionProbability])
	assert.Equal(t, "pong.bin", filepath.Base(emu.rom))
	assert.Equal(t, 1, emu.mode, "first available mode is the default")
	assert.Equal(t, 1, e.Mode())
	assert.Equal(t, uint32(7), e.Seed())

	assert.Equal(t, 2, e.NumAgents())
	assert.Equal(t, []env.AgentID{"player_0", "player_1"}, e.Agents())

	as, err := e.ActionSpace("player_1")
	require.NoError(t, err)
	assert.Equal(t, env.Discrete{N: 18}, as)

	space, err := e.ObservationSpace("player_0")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 3}, space.Shape)
	assert.Equal(t, env.Uint8, space.DType)
	assert.Equal(t, 255.0, space.High)
}

func TestMissingROMIsConfigError(t *testing.T) {
	emu := newFakeEmulator()
	_, err := New(emu, "pong", 2, WithROMRoot(t.TempDir()), WithLogger(quietLogger()))
	require.ErrorIs(t, err, env.ErrROMNotInstalled)
	require.ErrorIs(t, err, env.ErrConfig)
	assert.Contains(t, err.Error(), filepath.Join("ROM", "pong", "pong.bin"))
	assert.Empty(t, emu.ints, "no engine call before the rom is located")
}

func TestInvalidObsType(t *testing.T) {
	_, err := New(newFakeEmulator(), "pong", 2, WithObsType("pixels"))
	require.ErrorIs(t, err, env.ErrConfig)
}

func TestModeSelection(t *testing.T) {
	t.Run("requested mode must be available", func(t *testing.T) {
		emu := newFakeEmulator()
		root := installROM(t, "pong")
		_, err := New(emu, "pong", 2, WithROMRoot(root), WithMode(4), WithLogger(quietLogger()))
		require.ErrorIs(t, err, env.ErrInvalidMode)
		assert.Contains(t, err.Error(), "[1 3 5]")
	})
	t.Run("available mode is accepted", func(t *testing.T) {
		emu := newFakeEmulator()
		e := newTestEnv(t, emu, 2, WithMode(3))
		assert.Equal(t, 3, emu.mode)
		assert.Equal(t, 3, e.Mode())
	})
	t.Run("no modes for player count", func(t *testing.T) {
		emu := newFakeEmulator()
		emu.modes = nil
		root := installROM(t, "pong")
		_, err := New(emu, "pong", 4, WithROMRoot(root), WithLogger(quietLogger()))
		require.ErrorIs(t, err, env.ErrInvalidMode)
	})
}

func TestROMLoadFailurePropagates(t *testing.T) {
	emu := newFakeEmulator()
	emu.romErr = errors.New("bad checksum")
	root := installROM(t, "pong")
	_, err := New(emu, "pong", 2, WithROMRoot(root), WithLogger(quietLogger()))
	require.ErrorIs(t, err, emu.romErr)
}

func TestMinimalActionSet(t *testing.T) {
	emu := newFakeEmulator()
	e := newTestEnv(t, emu, 2, WithMinimalActionSet())

	as, err := e.ActionSpace("player_0")
	require.NoError(t, err)
	assert.Equal(t, 4, as.N)

	_, err = e.Reset(false)
	require.NoError(t, err)
	_, err = e.Step(1, false)
	require.NoError(t, err)
	_, err = e.Step(3, false)
	require.NoError(t, err)
	require.Len(t, emu.acts, 1)
	assert.Equal(t, []Action{Fire, Down}, emu.acts[0])

	_, err = e.Step(4, false)
	require.ErrorIs(t, err, env.ErrInvalidAction)
}

func TestRoundRobinCursor(t *testing.T) {
	emu := newFakeEmulator()
	emu.rewards = [][]float64{{1, -1, 0}, {-1, 1, 0}}
	e := newTestEnv(t, emu, 3)
	_, err := e.Reset(false)
	require.NoError(t, err)

	agents := e.Agents()
	for n := 1; n <= 7; n++ {
		_, err := e.Step(int(Noop), false)
		require.NoError(t, err)
		assert.Equal(t, agents[n%len(agents)], e.AgentSelection(), "after %d steps", n)
	}
}

func TestFlushAtomicity(t *testing.T) {
	emu := newFakeEmulator()
	emu.rewards = [][]float64{{3, -2}}
	e := newTestEnv(t, emu, 2)

	obs, err := e.Reset(true)
	require.NoError(t, err)
	require.NotNil(t, obs)
	assert.Equal(t, map[env.AgentID]float64{"player_0": 0, "player_1": 0}, e.Rewards())

	_, err = e.Step(int(Up), false)
	require.NoError(t, err)
	assert.Empty(t, emu.acts, "no engine advance on a partial batch")
	assert.Equal(t, 1, e.PendingActions())
	assert.Equal(t, map[env.AgentID]float64{"player_0": 0, "player_1": 0}, e.Rewards())

	_, err = e.Step(int(Down), false)
	require.NoError(t, err)
	require.Len(t, emu.acts, 1)
	assert.Equal(t, []Action{Up, Down}, emu.acts[0], "agent i's action at position i")
	assert.Equal(t, 0, e.PendingActions())
	assert.Equal(t, map[env.AgentID]float64{"player_0": 3, "player_1": -2}, e.Rewards())
}

func TestRewardsPersistAcrossPartialSteps(t *testing.T) {
	emu := newFakeEmulator()
	emu.rewards = [][]float64{{1, 2}, {5, 6}}
	e := newTestEnv(t, emu, 2)
	_, err := e.Reset(false)
	require.NoError(t, err)

	for _, a := range []int{0, 0, 1} {
		_, err := e.Step(a, false)
		require.NoError(t, err)
	}
	assert.Equal(t, map[env.AgentID]float64{"player_0": 1, "player_1": 2}, e.Rewards())

	_, err = e.Step(1, false)
	require.NoError(t, err)
	assert.Equal(t, map[env.AgentID]float64{"player_0": 5, "player_1": 6}, e.Rewards())
}

func TestTerminationIsSimultaneous(t *testing.T) {
	emu := newFakeEmulator()
	emu.overAt = 2
	e := newTestEnv(t, emu, 2)
	_, err := e.Reset(false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := e.Step(0, false)
		require.NoError(t, err)
		assert.Equal(t, map[env.AgentID]bool{"player_0": false, "player_1": false}, e.Dones())
	}
	_, err = e.Step(0, false)
	require.NoError(t, err)
	assert.Equal(t, map[env.AgentID]bool{"player_0": true, "player_1": true}, e.Dones())

	_, err = e.Step(0, false)
	require.ErrorIs(t, err, env.ErrEpisodeDone)

	_, err = e.Reset(false)
	require.NoError(t, err)
	assert.Equal(t, map[env.AgentID]bool{"player_0": false, "player_1": false}, e.Dones())
}

func TestPreconditions(t *testing.T) {
	e := newTestEnv(t, newFakeEmulator(), 2)

	_, err := e.Step(0, false)
	require.ErrorIs(t, err, env.ErrNotReset)
	_, err = e.Observe("player_0")
	require.ErrorIs(t, err, env.ErrNotReset)

	_, err = e.Reset(false)
	require.NoError(t, err)
	_, err = e.Step(18, false)
	require.ErrorIs(t, err, env.ErrInvalidAction)
	_, err = e.Step(-1, false)
	require.ErrorIs(t, err, env.ErrInvalidAction)
	assert.Equal(t, 0, e.PendingActions(), "rejected actions are not buffered")

	_, err = e.Observe("player_9")
	require.ErrorIs(t, err, env.ErrUnknownAgent)
	_, err = e.ActionSpace("player_9")
	require.ErrorIs(t, err, env.ErrUnknownAgent)
}

func TestEngineFailurePropagatesUnwrapped(t *testing.T) {
	emu := newFakeEmulator()
	emu.actErr = errors.New("illegal console state")
	e := newTestEnv(t, emu, 2)
	_, err := e.Reset(false)
	require.NoError(t, err)
	_, err = e.Step(0, false)
	require.NoError(t, err)
	_, err = e.Step(0, false)
	assert.Same(t, emu.actErr, err)
}

func TestObservationKinds(t *testing.T) {
	t.Run("image", func(t *testing.T) {
		emu := newFakeEmulator()
		e := newTestEnv(t, emu, 2)
		obs, err := e.Reset(true)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 3}, obs.Shape)
		assert.Equal(t, emu.screen, obs.U8)

		obs.U8[0] = 99
		assert.Equal(t, uint8(0), emu.screen[0], "observation does not alias the frame buffer")

		next, err := e.Step(0, true)
		require.NoError(t, err)
		assert.Equal(t, 24, next.Len())
	})
	t.Run("ram", func(t *testing.T) {
		emu := newFakeEmulator()
		e := newTestEnv(t, emu, 2, WithObsType(ObsRAM))
		space, err := e.ObservationSpace("player_1")
		require.NoError(t, err)
		assert.Equal(t, []int{RAMSize}, space.Shape)

		obs, err := e.Reset(true)
		require.NoError(t, err)
		assert.Equal(t, emu.ram, obs.U8)
	})
	t.Run("observe off", func(t *testing.T) {
		e := newTestEnv(t, newFakeEmulator(), 2)
		obs, err := e.Reset(false)
		require.NoError(t, err)
		assert.Nil(t, obs)
	})
}

func TestSpacesStableAcrossResets(t *testing.T) {
	e := newTestEnv(t, newFakeEmulator(), 2)
	before, err := e.ObservationSpace("player_0")
	require.NoError(t, err)
	before.Shape[0] = 1000

	for i := 0; i < 3; i++ {
		_, err := e.Reset(false)
		require.NoError(t, err)
	}
	after, err := e.ObservationSpace("player_0")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 3}, after.Shape)
	as, err := e.ActionSpace("player_0")
	require.NoError(t, err)
	assert.Equal(t, 18, as.N)
}

type countingDisplay struct {
	opens, presents, closes *int
}

func (d countingDisplay) Open(int, int) error       { *d.opens++; return nil }
func (d countingDisplay) Present(image.Image) error { *d.presents++; return nil }
func (d countingDisplay) Close() error              { *d.closes++; return nil }

func TestRenderAcquiresLazilyAndReacquiresAfterClose(t *testing.T) {
	var opens, presents, closes int
	emu := newFakeEmulator()
	e := newTestEnv(t, emu, 2, WithDisplay(func() (env.Display, error) {
		return countingDisplay{&opens, &presents, &closes}, nil
	}))
	assert.Equal(t, 0, opens)

	img, err := e.Render()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	r, g, b, _ := img.At(1, 0).RGBA()
	assert.Equal(t, []uint32{3, 4, 5}, []uint32{r >> 8, g >> 8, b >> 8})

	_, err = e.Render()
	require.NoError(t, err)
	assert.Equal(t, 1, opens)
	assert.Equal(t, 2, presents)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Equal(t, 1, closes)

	_, err = e.Render()
	require.NoError(t, err)
	assert.Equal(t, 2, opens, "render after close reacquires")
}

func TestHeadlessRender(t *testing.T) {
	e := newTestEnv(t, newFakeEmulator(), 2)
	img, err := e.Render()
	require.NoError(t, err)
	assert.NotNil(t, img)
	require.NoError(t, e.Close())
}

func TestFrameImageSizeMismatch(t *testing.T) {
	_, err := frameImage(make([]uint8, 5), 2, 2)
	require.Error(t, err)
}
