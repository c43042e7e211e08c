package atari

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jason-s-yu/turnenv/env"
)

// ROMPath returns <root>/ROM/<game>/<game>.bin.
func ROMPath(root, game string) string {
	return filepath.Join(root, "ROM", game, game+".bin")
}

// LocateROM returns the ROM path for game, or ErrROMNotInstalled naming the
// missing file.
func LocateROM(root, game string) (string, error) {
	path := ROMPath(root, game)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s (install roms with the AutoROM tool)", env.ErrROMNotInstalled, path)
	}
	return path, nil
}
