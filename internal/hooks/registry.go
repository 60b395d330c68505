// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hooks

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a name-keyed table of host symbols.  It stands in for the
// original implementation's dynamic lookup against the running process
// image: the host publishes its symbols during startup and the engine
// resolves them by name on first use.
type Registry struct {
	mtx     sync.Mutex
	symbols map[string]interface{}
}

// NewRegistry returns an empty symbol registry.
func NewRegistry() *Registry {
	return &Registry{symbols: make(map[string]interface{})}
}

// Register publishes a symbol under the given name.
//
// Registering a name twice returns an error with kind ErrSymbolRegistered so
// a misbehaving host cannot silently replace an entry point some other
// component already resolved.
func (r *Registry) Register(name string, symbol interface{}) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, exists := r.symbols[name]; exists {
		str := fmt.Sprintf("symbol %q is already registered", name)
		return makeError(ErrSymbolRegistered, str)
	}
	r.symbols[name] = symbol
	return nil
}

// Lookup returns the symbol registered under the given name.
func (r *Registry) Lookup(name string) (interface{}, bool) {
	r.mtx.Lock()
	symbol, ok := r.symbols[name]
	r.mtx.Unlock()
	return symbol, ok
}

// Symbols returns a sorted slice of the registered symbol names.
func (r *Registry) Symbols() []string {
	r.mtx.Lock()
	names := make([]string, 0, len(r.symbols))
	for name := range r.symbols {
		names = append(names, name)
	}
	r.mtx.Unlock()

	sort.Strings(names)
	return names
}

// processRegistry holds the symbols the current process image exposes.
var processRegistry = NewRegistry()

// Register publishes a symbol in the process-wide registry.
func Register(name string, symbol interface{}) error {
	return processRegistry.Register(name, symbol)
}

// ProcessHost returns the Host backed by the process-wide registry.  It is
// the production host adapter used when the engine runs inside a simulated
// node process.
func ProcessHost() Host {
	return processRegistry
}
