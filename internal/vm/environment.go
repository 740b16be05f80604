package vm

import (
	"sync"

	"github.com/ember-lang/ember/internal/typesystem"
)

// Environment is the VM's process-lifetime global scope (spec §3.4): a
// types map populated by Let during checking, and a values map populated
// by SetEnv during execution. There is no lexical scoping at this level;
// Let shadows by overwrite and successive top-level expressions observe
// prior bindings.
//
// Environment satisfies checker.TypeEnv structurally, so the checker
// package never needs to import vm.
type Environment struct {
	mu     sync.Mutex
	types  map[string]typesystem.Type
	values map[string]Value
}

func NewEnvironment() *Environment {
	return &Environment{
		types:  make(map[string]typesystem.Type),
		values: make(map[string]Value),
	}
}

func (e *Environment) TypeOf(name string) (typesystem.Type, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.types[name]
	return t, ok
}

func (e *Environment) SetType(name string, t typesystem.Type) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types[name] = t
}

func (e *Environment) GetValue(name string) (Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[name]
	return v, ok
}

func (e *Environment) SetValue(name string, v Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[name] = v
}
