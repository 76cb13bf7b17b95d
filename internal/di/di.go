// Package di provides a minimal service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the service registered under name, resolving lazy factories.
	// Panics if the name is unknown.
	Get(name string) any

	// Has reports whether name is registered.
	Has(name string) bool
}

// Container is the write side of the container.
type Container interface {
	ServiceRegistry

	// Register stores an already-constructed service under name.
	Register(name string, service any)

	// RegisterFactory stores a lazily-constructed service. The factory runs
	// at most once, on first Get.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	value   any
	factory func(ServiceRegistry) any
	once    sync.Once
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

func (c *container) Register(name string, service any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{value: service}
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{factory: factory}
}

func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	if e.factory != nil {
		e.once.Do(func() {
			e.value = e.factory(c)
		})
	}

	return e.value
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registry name.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory under the token's name.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service. Panics on type mismatch, which indicates
// a wiring bug rather than a runtime condition.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	v := sr.Get(token.name)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token.name, v))
	}
	return typed
}
