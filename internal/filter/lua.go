package filter

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/flarebyte/shoggoth/internal/fault"
)

// predicateTimeout bounds one evaluation of the inline filter.
const predicateTimeout = time.Second

// predicate is a compiled inline filter, run in a fresh sandboxed state per
// member so one evaluation cannot leak globals into the next.
type predicate struct {
	proto *lua.FunctionProto
}

// wrapExpression turns a bare expression into a chunk returning it.
func wrapExpression(code string) string {
	if containsReturn(code) {
		return code
	}
	return "return (" + code + ")"
}

// containsReturn reports whether the code contains the token "return".
func containsReturn(s string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		if f == "return" {
			return true
		}
	}
	return false
}

func compilePredicate(code string) (*predicate, error) {
	src := wrapExpression(code)
	chunk, err := parse.Parse(strings.NewReader(src), "filter.inline")
	if err != nil {
		return nil, &fault.ConfigParseError{Path: "filter.inline", Msg: err.Error()}
	}
	proto, err := lua.Compile(chunk, "filter.inline")
	if err != nil {
		return nil, &fault.ConfigParseError{Path: "filter.inline", Msg: err.Error()}
	}
	return &predicate{proto: proto}, nil
}

func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// Base opens these too; the filter has no business loading code.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// eval runs the predicate with path, rel, name and kind as globals.
func (p *predicate) eval(m Member) (bool, error) {
	L := newSandboxState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), predicateTimeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("path", lua.LString(m.Path))
	L.SetGlobal("rel", lua.LString(m.Rel))
	L.SetGlobal("name", lua.LString(path.Base(m.Rel)))
	L.SetGlobal("kind", lua.LString(string(m.Kind)))

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, errors.New("sandbox timeout")
		}
		return false, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	b, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("filter returned %s, expected boolean", ret.Type().String())
	}
	return bool(b), nil
}
