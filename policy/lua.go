package policy

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Lua runs a script that defines
//
//	function act(agent, legal, n) ... end
//
// where legal is a 1-based table of legal action indices (possibly empty) and
// n is the size of the action space. act returns the chosen action index.
type Lua struct {
	mu sync.Mutex
	ls *lua.LState
	fn lua.LValue
}

// NewLua compiles source and checks that it defines act.
func NewLua(source string) (*Lua, error) {
	L := lua.NewState()
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("load lua policy: %w", err)
	}
	return newLua(L)
}

// LoadLua reads the script from path.
func LoadLua(path string) (*Lua, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("load lua policy %s: %w", path, err)
	}
	return newLua(L)
}

func newLua(L *lua.LState) (*Lua, error) {
	fn := L.GetGlobal("act")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("lua policy must define function act(agent, legal, n), got %s", fn.Type())
	}
	return &Lua{ls: L, fn: fn}, nil
}

func (p *Lua) Act(ctx context.Context, d Decision) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ls.SetContext(ctx)
	defer p.ls.RemoveContext()

	legal := p.ls.NewTable()
	for _, a := range d.Info.LegalMoves {
		legal.Append(lua.LNumber(a))
	}
	err := p.ls.CallByParam(lua.P{Fn: p.fn, NRet: 1, Protect: true},
		lua.LString(d.Agent), legal, lua.LNumber(d.ActionSpace.N))
	if err != nil {
		return 0, fmt.Errorf("lua act for %s: %w", d.Agent, err)
	}
	ret := p.ls.Get(-1)
	p.ls.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("lua act for %s returned %s, want number", d.Agent, ret.Type())
	}
	return int(n), nil
}

// Close releases the interpreter.
func (p *Lua) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ls.Close()
}
