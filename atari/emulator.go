package atari

// Action is one of the 18 symbolic joystick actions understood by the emulator.
type Action uint8

const (
	Noop Action = iota
	Fire
	Up
	Right
	Left
	Down
	UpRight
	UpLeft
	DownRight
	DownLeft
	UpFire
	RightFire
	LeftFire
	DownFire
	UpRightFire
	UpLeftFire
	DownRightFire
	DownLeftFire

	NumFullActions = 18
)

var actionNames = [NumFullActions]string{
	"NOOP", "FIRE", "UP", "RIGHT", "LEFT", "DOWN",
	"UPRIGHT", "UPLEFT", "DOWNRIGHT", "DOWNLEFT",
	"UPFIRE", "RIGHTFIRE", "LEFTFIRE", "DOWNFIRE",
	"UPRIGHTFIRE", "UPLEFTFIRE", "DOWNRIGHTFIRE", "DOWNLEFTFIRE",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "UNKNOWN"
}

// Emulator option keys.
const (
	KeyRandomSeed              = "random_seed"
	KeyFrameSkip               = "frame_skip"
	KeyRepeatActionProbability = "repeat_action_probability"
)

// RAMSize is the number of bytes of console RAM exposed as an observation.
const RAMSize = 128

// Emulator is the multi-player arcade learning interface the coordinator
// drives. Implementations own the ROM, the console and its frame buffer.
type Emulator interface {
	SetInt(key string, value int) error
	SetFloat(key string, value float64) error
	LoadROM(path string) error

	// AvailableModes lists the game modes that support numPlayers players.
	AvailableModes(numPlayers int) ([]int, error)
	SetMode(mode int) error
	MinimalActionSet() []Action

	// ScreenDims returns the native frame size.
	ScreenDims() (width, height int)
	ResetGame() error
	// Act advances the console by one (frame-skipped) step with one action
	// per player, in player order, and returns one reward per player.
	Act(actions []Action) ([]float64, error)
	GameOver() bool

	// ScreenRGB returns height*width*3 bytes, row-major.
	ScreenRGB() []uint8
	// RAM returns RAMSize bytes.
	RAM() []uint8
}
