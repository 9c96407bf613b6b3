package shell

import (
	"fmt"
	"regexp"

	"github.com/dshills/keybridge/internal/client"
)

// Retriever computes the value of a dynamic variable in a context.
// An error means the variable is absent.
type Retriever func(name string, ctx *client.Context) (string, error)

// EnvVarMap holds variables supplied for a single call. Its entries take
// precedence over every registered retriever.
type EnvVarMap map[string]string

type rule struct {
	pattern   *regexp.Regexp
	retriever Retriever
}

// Registry maps variable names to retrievers.
//
// Rules are tried in registration order and the first whose pattern
// matches the whole name wins, so earlier registrations take priority.
// Registry is not safe for concurrent use.
type Registry struct {
	rules  []rule
	logger Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Registry{logger: logger}
}

// Register appends a rule for names fully matching pattern.
func (r *Registry) Register(pattern string, retriever Retriever) error {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return fmt.Errorf("register env var %q: %w", pattern, err)
	}
	r.rules = append(r.rules, rule{pattern: re, retriever: retriever})
	return nil
}

// MustRegister is like Register but panics on an invalid pattern.
// It is meant for built-in rules.
func (r *Registry) MustRegister(pattern string, retriever Retriever) {
	if err := r.Register(pattern, retriever); err != nil {
		panic(err)
	}
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Resolve returns the value of name in ctx.
//
// An entry in vars wins. Otherwise the first rule matching name is asked;
// a retriever error or the lack of a matching rule reports the variable
// absent.
func (r *Registry) Resolve(name string, ctx *client.Context, vars EnvVarMap) (string, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	for _, rl := range r.rules {
		if !rl.pattern.MatchString(name) {
			continue
		}
		v, err := rl.retriever(name, ctx)
		if err != nil {
			r.logger.Debug("env var %s unavailable: %v", name, err)
			return "", false
		}
		return v, true
	}
	return "", false
}
