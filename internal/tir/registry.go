package tir

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry holds module definitions by name. Defining a name again replaces
// the earlier module; the replacement is logged, at warn level when the two
// modules are structurally identical since that is almost always an
// accidental repeated declaration.
type Registry struct {
	mu     sync.Mutex
	mods   map[string]*IRModule
	redefs map[string]int
	log    zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{mods: make(map[string]*IRModule), redefs: make(map[string]int), log: log}
}

// Define binds m under m.Name and reports whether an earlier definition was
// shadowed.
func (r *Registry) Define(m *IRModule) (shadowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.mods[m.Name]
	r.mods[m.Name] = m
	if !ok {
		r.log.Debug().Str("module", m.Name).Strs("funcs", m.FuncNames()).Msg("module defined")
		return false
	}
	r.redefs[m.Name]++
	if Print(prev) == Print(m) {
		r.log.Warn().Str("module", m.Name).Int("redefinitions", r.redefs[m.Name]).Msg("identical module declared again; previous definition shadowed")
	} else {
		r.log.Info().Str("module", m.Name).Msg("module redefined")
	}
	return true
}

// Lookup returns the current definition of name.
func (r *Registry) Lookup(name string) (*IRModule, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mods[name]
	return m, ok
}

// Redefinitions reports how many times name has been shadowed.
func (r *Registry) Redefinitions(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redefs[name]
}

// Names returns the defined module names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.mods))
	for n := range r.mods {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
