package script

import (
	"errors"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keybridge/internal/client"
	"github.com/dshills/keybridge/internal/option"
	"github.com/dshills/keybridge/internal/shell"
)

// ErrNoValue is returned by a script retriever whose function returned nil.
var ErrNoValue = errors.New("script returned no value")

// BindOptions installs the option table, operating on scope:
//
//	option.set(name, value)
//	option.get(name)        -- value, or nil when undeclared
//	option.unset(name)
//	option.complete(prefix) -- list of names
func (s *State) BindOptions(scope *option.Manager) {
	s.module("option", map[string]lua.LGFunction{
		"set": func(L *lua.LState) int {
			name := L.CheckString(1)
			v, ok := fromLua(L.Get(2))
			if !ok {
				L.ArgError(2, "expected string, number or boolean")
				return 0
			}
			scope.Set(name, v)
			return 0
		},
		"get": func(L *lua.LState) int {
			opt, err := scope.Get(L.CheckString(1))
			if err != nil {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLua(opt.Value()))
			return 1
		},
		"unset": func(L *lua.LState) int {
			scope.Unset(L.CheckString(1))
			return 0
		},
		"complete": func(L *lua.LState) int {
			t := L.NewTable()
			for _, name := range scope.Complete(L.OptString(1, "")) {
				t.Append(lua.LString(name))
			}
			L.Push(t)
			return 1
		},
	})
}

// BindEnv installs env.register(pattern, fn), which appends a rule to reg.
// fn receives the variable name and the client name and returns the value;
// nil or a runtime error leaves the variable unset.
func (s *State) BindEnv(reg *shell.Registry) {
	s.module("env", map[string]lua.LGFunction{
		"register": func(L *lua.LState) int {
			pattern := L.CheckString(1)
			fn := L.CheckFunction(2)
			if err := reg.Register(pattern, s.retriever(fn)); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
	})
}

func (s *State) retriever(fn *lua.LFunction) shell.Retriever {
	return func(name string, ctx *client.Context) (string, error) {
		ret, err := s.call(fn, lua.LString(name), lua.LString(ctx.Name()))
		if err != nil {
			return "", err
		}
		switch ret.Type() {
		case lua.LTNil:
			return "", ErrNoValue
		case lua.LTString, lua.LTNumber, lua.LTBool:
			return ret.String(), nil
		default:
			return "", fmt.Errorf("script returned a %s", ret.Type())
		}
	}
}

// module registers a global table of functions.
func (s *State) module(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), funcs))
}

func fromLua(v lua.LValue) (any, bool) {
	switch v := v.(type) {
	case lua.LString:
		return string(v), true
	case lua.LBool:
		return bool(v), true
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f), true
		}
		return f, true
	default:
		return nil, false
	}
}

func toLua(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(v)
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case fmt.Stringer:
		return lua.LString(v.String())
	default:
		return lua.LString(fmt.Sprint(v))
	}
}
