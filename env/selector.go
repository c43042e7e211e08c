package env

// Selector is a round-robin turn cursor over a fixed agent order. It advances
// unconditionally; it never consults engine state.
type Selector struct {
	order []AgentID
	idx   int
}

// NewSelector copies order. An empty order yields a selector whose cursor is "".
func NewSelector(order []AgentID) *Selector {
	return &Selector{order: append([]AgentID(nil), order...)}
}

// Reset moves the cursor to the first agent and returns it.
func (s *Selector) Reset() AgentID {
	s.idx = 0
	return s.Selected()
}

// Next advances the cursor, wrapping after the last agent, and returns it.
func (s *Selector) Next() AgentID {
	if len(s.order) == 0 {
		return ""
	}
	s.idx = (s.idx + 1) % len(s.order)
	return s.Selected()
}

// Selected returns the agent under the cursor.
func (s *Selector) Selected() AgentID {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[s.idx]
}

func (s *Selector) IsFirst() bool { return s.idx == 0 }

func (s *Selector) IsLast() bool { return len(s.order) > 0 && s.idx == len(s.order)-1 }
