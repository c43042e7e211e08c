package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/turnenv/env"
	"github.com/jason-s-yu/turnenv/internal/config"
	"github.com/jason-s-yu/turnenv/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCambiaCommand(t *testing.T) {
	out, err := execute(t, "cambia", "--episodes", "5", "--seed", "3", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "episodes=5")
	assert.Contains(t, out, "player_0 mean=")
	assert.Contains(t, out, "player_1 mean=")
}

func TestCambiaCommandLuaPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "first.lua")
	src := "function act(agent, legal, n) return legal[1] end\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	out, err := execute(t, "cambia", "-n", "3", "--policy", path, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "episodes=3")
}

func TestCambiaCommandRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "cambia", "--cards", "9", "--log-level", "error")
	assert.ErrorIs(t, err, env.ErrConfig)

	_, err = execute(t, "cambia", "--store", "sqlite", "--log-level", "error")
	assert.ErrorIs(t, err, env.ErrConfig)

	_, err = execute(t, "cambia", "--log-level", "shouty")
	assert.Error(t, err)
}

func TestOpenStoreNeedsURLs(t *testing.T) {
	ctx := context.Background()
	st, err := openStore(ctx, "memory", config.Config{}, "")
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, st)

	_, err = openStore(ctx, "postgres", config.Config{}, "")
	assert.ErrorIs(t, err, env.ErrConfig)
	_, err = openStore(ctx, "redis", config.Config{}, "")
	assert.ErrorIs(t, err, env.ErrConfig)
}

func TestROMCommand(t *testing.T) {
	root := t.TempDir()
	rom := filepath.Join(root, "ROM", "pong", "pong.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(rom), 0o755))
	require.NoError(t, os.WriteFile(rom, []byte{0}, 0o644))

	out, err := execute(t, "rom", "pong", "--rom-root", root)
	require.NoError(t, err)
	assert.Equal(t, rom+"\n", out)

	_, err = execute(t, "rom", "boxing", "--rom-root", root)
	assert.ErrorIs(t, err, env.ErrROMNotInstalled)
}
