package app

import (
	"os"

	"github.com/dshills/keybridge/internal/option"
)

// ShellEnv overrides the default shell option when set.
const ShellEnv = "KEYBRIDGE_SHELL"

// DefaultOptions returns the global option defaults that are not built
// into option.NewGlobalManager.
func DefaultOptions() map[string]any {
	sh := "sh"
	if v := os.Getenv(ShellEnv); v != "" {
		sh = v
	}
	return map[string]any{
		"shell":      sh,
		"autoreload": option.Ask.String(),
	}
}

// NewGlobalOptions creates the root scope with all defaults applied,
// followed by overrides in order.
func NewGlobalOptions(overrides ...map[string]any) *option.Manager {
	global := option.NewGlobalManager()
	global.Apply(DefaultOptions())
	for _, o := range overrides {
		global.Apply(o)
	}
	return global
}
