// Package store persists finished episode records.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/turnenv/env"
)

// Episode summarizes one finished rollout.
type Episode struct {
	ID        uuid.UUID               `json:"id"`
	Env       string                  `json:"env"`
	Seed      uint64                  `json:"seed"`
	Steps     int                     `json:"steps"`
	Truncated bool                    `json:"truncated"`
	Returns   map[env.AgentID]float64 `json:"returns"`
	StartedAt time.Time               `json:"startedAt"`
	Duration  time.Duration           `json:"duration"`
}

// Store saves episodes. Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, ep Episode) error
	Close() error
}

func marshalReturns(ep Episode) ([]byte, error) {
	if ep.Returns == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(ep.Returns)
}

// Memory keeps episodes in process.
type Memory struct {
	mu       sync.Mutex
	episodes []Episode
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, ep Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ep.Returns = env.CopyRewards(ep.Returns)
	m.episodes = append(m.episodes, ep)
	return nil
}

// Episodes returns a copy of everything saved so far, oldest first.
func (m *Memory) Episodes() []Episode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Episode, len(m.episodes))
	copy(out, m.episodes)
	return out
}

func (m *Memory) Close() error { return nil }
