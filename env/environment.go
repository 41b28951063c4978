// Package env provides a map of environment variables with keys normalized
// for case-insensitive operating systems. It satisfies the Env interface of
// github.com/buildkite/interpolate, so a process environment can feed
// variable interpolation directly.
package env

import (
	"runtime"
	"strings"

	"github.com/puzpuzpuz/xsync/v2"
)

// Environment is a map of environment variables.
type Environment struct {
	underlying *xsync.MapOf[string, string]
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{underlying: xsync.NewMapOf[string]()}
}

// FromMap creates an Environment from a map of name to value.
func FromMap(m map[string]string) *Environment {
	e := &Environment{underlying: xsync.NewMapOfPresized[string](len(m))}
	for k, v := range m {
		e.Set(k, v)
	}
	return e
}

// FromSlice creates an Environment from a slice of "name=value" strings, as
// returned by os.Environ. Entries without an '=' are dropped.
func FromSlice(s []string) *Environment {
	e := &Environment{underlying: xsync.NewMapOfPresized[string](len(s))}
	for _, l := range s {
		if name, value, ok := Split(l); ok {
			e.Set(name, value)
		}
	}
	return e
}

// Split splits an environment variable (in the form "name=value") into the
// name and value substrings. If there is no '=', or the first '=' is at the
// start, it returns `"", "", false`.
func Split(l string) (name, value string, ok bool) {
	// Windows can create variables beginning with '='; drop them like the
	// name-less entries they are.
	i := strings.IndexRune(l, '=')
	if i <= 0 {
		return "", "", false
	}
	return l[:i], l[i+1:], true
}

// Get returns the value of a variable and whether it was set.
func (e *Environment) Get(key string) (string, bool) {
	return e.underlying.Load(normalizeKeyName(key))
}

// Exists reports if the variable is set at all.
func (e *Environment) Exists(key string) bool {
	_, ok := e.Get(key)
	return ok
}

// Set sets a variable and returns its value.
func (e *Environment) Set(key, value string) string {
	e.underlying.Store(normalizeKeyName(key), value)
	return value
}

// Remove unsets a variable and returns whatever value it held.
func (e *Environment) Remove(key string) string {
	value, _ := e.Get(key)
	e.underlying.Delete(normalizeKeyName(key))
	return value
}

// Length returns the number of variables set.
func (e *Environment) Length() int {
	return e.underlying.Size()
}

// Dump returns a copy of the environment as a regular map.
func (e *Environment) Dump() map[string]string {
	m := make(map[string]string, e.Length())
	e.underlying.Range(func(k, v string) bool {
		m[k] = v
		return true
	})
	return m
}

// Windows isn't case sensitive for environment variable names.
func normalizeKeyName(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}
