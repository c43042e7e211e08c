package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/turnenv/env"
)

func TestRandomPrefersLegalMoves(t *testing.T) {
	p := NewRandom(1)
	d := Decision{Agent: "player_0", Info: env.Info{LegalMoves: []int{3, 7}}, ActionSpace: env.Discrete{N: 97}}
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		a, err := p.Act(context.Background(), d)
		require.NoError(t, err)
		require.Contains(t, []int{3, 7}, a)
		seen[a] = true
	}
	assert.Len(t, seen, 2, "both legal moves get sampled")
}

func TestRandomFallsBackToActionSpace(t *testing.T) {
	p := NewRandom(2)
	d := Decision{Agent: "player_1", ActionSpace: env.Discrete{N: 18}}
	for i := 0; i < 100; i++ {
		a, err := p.Act(context.Background(), d)
		require.NoError(t, err)
		require.True(t, d.ActionSpace.Contains(a))
	}

	_, err := p.Act(context.Background(), Decision{})
	assert.ErrorIs(t, err, ErrNoAction)
}

func TestRandomDeterministic(t *testing.T) {
	a, b := NewRandom(9), NewRandom(9)
	d := Decision{ActionSpace: env.Discrete{N: 1000}}
	for i := 0; i < 20; i++ {
		x, _ := a.Act(context.Background(), d)
		y, _ := b.Act(context.Background(), d)
		require.Equal(t, x, y)
	}
}

func TestRandomHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandom(1).Act(ctx, Decision{ActionSpace: env.Discrete{N: 2}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	var p Policy = Func(func(_ context.Context, d Decision) (int, error) { return d.ActionSpace.N - 1, nil })
	a, err := p.Act(context.Background(), Decision{ActionSpace: env.Discrete{N: 5}})
	require.NoError(t, err)
	assert.Equal(t, 4, a)
}

const lastLegal = `
function act(agent, legal, n)
  if #legal > 0 then
    return legal[#legal]
  end
  return n - 1
end
`

func TestLuaPolicy(t *testing.T) {
	p, err := NewLua(lastLegal)
	require.NoError(t, err)
	defer p.Close()

	a, err := p.Act(context.Background(), Decision{Agent: "player_0", Info: env.Info{LegalMoves: []int{2, 5, 9}}, ActionSpace: env.Discrete{N: 97}})
	require.NoError(t, err)
	assert.Equal(t, 9, a)

	a, err = p.Act(context.Background(), Decision{Agent: "player_1", ActionSpace: env.Discrete{N: 18}})
	require.NoError(t, err)
	assert.Equal(t, 17, a)
}

func TestLuaSeesAgent(t *testing.T) {
	p, err := NewLua(`function act(agent, legal, n) if agent == "player_1" then return 1 end return 0 end`)
	require.NoError(t, err)
	defer p.Close()

	a, err := p.Act(context.Background(), Decision{Agent: "player_1", ActionSpace: env.Discrete{N: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, a)
}

func TestLuaErrors(t *testing.T) {
	_, err := NewLua(`function act(`)
	assert.Error(t, err, "syntax error")

	_, err = NewLua(`x = 1`)
	assert.ErrorContains(t, err, "must define function act")

	p, err := NewLua(`function act() error("boom") end`)
	require.NoError(t, err)
	_, err = p.Act(context.Background(), Decision{Agent: "player_0"})
	assert.ErrorContains(t, err, "boom")
	p.Close()

	p, err = NewLua(`function act() return "left" end`)
	require.NoError(t, err)
	_, err = p.Act(context.Background(), Decision{Agent: "player_0"})
	assert.ErrorContains(t, err, "want number")
	p.Close()
}

func TestLoadLua(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.lua")
	require.NoError(t, os.WriteFile(path, []byte(lastLegal), 0o644))

	p, err := LoadLua(path)
	require.NoError(t, err)
	defer p.Close()
	a, err := p.Act(context.Background(), Decision{Info: env.Info{LegalMoves: []int{4}}})
	require.NoError(t, err)
	assert.Equal(t, 4, a)

	_, err = LoadLua(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
