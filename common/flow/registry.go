package flow

import (
	"sort"
	"sync"
)

var (
	registry = make(map[string]Handler)
	mu       sync.RWMutex
)

// Register adds a handler for the given node type, replacing any previous one.
// Thread-safe and can be called from init() functions.
//
// Example:
//
//	flow.Register("Uptime", uptimeNode)
//
// Panics if nodeType is empty or handler is nil.
func Register(nodeType string, handler Handler) {
	if nodeType == "" {
		panic("nodeType cannot be empty")
	}
	if handler == nil {
		panic("handler cannot be nil")
	}

	mu.Lock()
	defer mu.Unlock()
	registry[nodeType] = handler
}

// RegisterFunc is a convenience method for registering function handlers.
func RegisterFunc(nodeType string, fn HandlerFunc) {
	Register(nodeType, fn)
}

// Get retrieves a handler by node type.
// Returns (nil, false) if not found.
func Get(nodeType string) (Handler, bool) {
	mu.RLock()
	defer mu.RUnlock()

	h, ok := registry[nodeType]
	return h, ok
}

// Unregister removes a node type.
// Returns true if the handler was found and removed, false otherwise.
func Unregister(nodeType string) bool {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := registry[nodeType]; !ok {
		return false
	}
	delete(registry, nodeType)
	return true
}

// Types returns the registered node types in sorted order.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
