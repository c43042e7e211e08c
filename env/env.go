// Package env defines the multi-agent environment contract shared by the
// simultaneous-action (atari) and sequential-turn (cardgame) coordinators.
//
// A coordinator owns exactly one engine handle and is not safe for concurrent
// use: callers serialize Reset, Observe and Step against a single instance.
package env

import (
	"fmt"
	"image"
)

// AgentID is an opaque, ordered, stable agent label.
type AgentID string

// PlayerID returns the conventional label for the engine player at index i.
func PlayerID(i int) AgentID {
	return AgentID(fmt.Sprintf("player_%d", i))
}

// Roster returns PlayerID(0)..PlayerID(n-1).
func Roster(n int) []AgentID {
	agents := make([]AgentID, n)
	for i := range agents {
		agents[i] = PlayerID(i)
	}
	return agents
}

// Observation is a dense row-major array. Exactly one of U8 or F32 is
// populated, matching the DType of the agent's observation space.
type Observation struct {
	Shape []int
	U8    []uint8
	F32   []float32
}

// Len returns the number of elements in the populated slice.
func (o *Observation) Len() int {
	if o == nil {
		return 0
	}
	if o.U8 != nil {
		return len(o.U8)
	}
	return len(o.F32)
}

// Info is the per-agent info entry. A nil LegalMoves means no legal-move list
// has been written for the agent during the current episode.
type Info struct {
	LegalMoves []int
}

// Env is the contract every coordinator exposes upward.
type Env interface {
	// Name identifies the underlying game.
	Name() string
	NumAgents() int
	// Agents returns the ordered roster. The slice is a copy.
	Agents() []AgentID
	ActionSpace(agent AgentID) (Discrete, error)
	ObservationSpace(agent AgentID) (Box, error)

	// Reset reinitializes the engine and per-agent state. It returns the
	// observation for the first active agent when observe is true.
	Reset(observe bool) (*Observation, error)
	// Observe returns the state relevant to agent without mutating anything.
	Observe(agent AgentID) (*Observation, error)
	// Step applies action for the agent under the turn cursor and returns the
	// observation for the newly active agent when observe is true.
	Step(action int, observe bool) (*Observation, error)
	// Render produces a visual frame, acquiring a display surface on demand.
	Render() (image.Image, error)
	// Close releases any acquired display surface. Safe to call repeatedly.
	Close() error

	AgentSelection() AgentID
	Rewards() map[AgentID]float64
	Dones() map[AgentID]bool
	Infos() map[AgentID]Info
}

// AllDone reports whether every agent in dones is marked done.
func AllDone(dones map[AgentID]bool) bool {
	if len(dones) == 0 {
		return false
	}
	for _, d := range dones {
		if !d {
			return false
		}
	}
	return true
}

// CopyRewards returns a copy of a reward mapping.
func CopyRewards(m map[AgentID]float64) map[AgentID]float64 {
	out := make(map[AgentID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CopyDones returns a copy of a termination mapping.
func CopyDones(m map[AgentID]bool) map[AgentID]bool {
	out := make(map[AgentID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CopyInfos returns a copy of an info mapping, including the legal-move slices.
func CopyInfos(m map[AgentID]Info) map[AgentID]Info {
	out := make(map[AgentID]Info, len(m))
	for k, v := range m {
		if v.LegalMoves != nil {
			v.LegalMoves = append([]int(nil), v.LegalMoves...)
		}
		out[k] = v
	}
	return out
}
