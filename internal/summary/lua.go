package summary

import (
	"context"
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const luaTimeout = 200 * time.Millisecond

// LuaExtractor runs a user-supplied script against the raw output. The
// script sees a global `output` string and returns a fragment string, or nil
// to pass. It executes in a restricted state: no io, no os, deterministic
// core libs only, with a hard timeout.
type LuaExtractor struct {
	code string
}

// NewLuaExtractor reads and keeps the script source; the script is compiled
// per call so one failed run cannot poison the next.
func NewLuaExtractor(path string) (*LuaExtractor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary script: %w", err)
	}
	return &LuaExtractor{code: string(b)}, nil
}

func (e *LuaExtractor) Extract(raw string) (string, bool) {
	L := newRestrictedState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), luaTimeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("output", lua.LString(raw))

	fn, err := L.LoadString(e.code)
	if err != nil {
		return "", false
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return "", false
	}
	ret := L.Get(-1)
	L.Pop(1)
	if s, ok := ret.(lua.LString); ok && string(s) != "" {
		return string(s), true
	}
	return "", false
}

func newRestrictedState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: 1024,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	return L
}
