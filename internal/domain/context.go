package domain

import "sync"

// Context is the per-slice scratch space: a mapping from string keys to
// Values, local to a single slice's execution. The engine itself touches a
// context from exactly one worker; the internal locking exists for user
// methods that fork their own goroutines. Contexts never outlive their slice
// and are never shared across slices.
type Context struct {
	mu   sync.RWMutex
	data map[string]Value
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{data: make(map[string]Value)}
}

// Get returns a snapshot of the value stored under key. The returned Value
// is a clone; mutating engine state through it is impossible.
func (c *Context) Get(key string) (Value, bool) {
	c.mu.RLock()
	v, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return Value{}, false
	}
	return v.Clone(), true
}

// Set upserts key to value. The value is cloned on the way in, so later
// mutation of the caller's copy does not leak into the context.
func (c *Context) Set(key string, value Value) {
	cloned := value.Clone()
	c.mu.Lock()
	c.data[key] = cloned
	c.mu.Unlock()
}

// Keys returns the stored keys in unspecified order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored keys.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// ContextGet reads key and decodes it into T in one step. A missing key
// yields ErrContextMissingKey; a value that does not decode as T yields
// ErrContextTypeMismatch.
func ContextGet[T any](c *Context, key string) (T, error) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, &ContextKeyError{Key: key}
	}
	out, err := DecodeArgs[T](v)
	if err != nil {
		return zero, &ContextTypeError{Key: key, Expected: ArgTypeName[T](), Err: err}
	}
	return out, nil
}
