package pipeline

import (
	"github.com/buildkite/interpolate"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// This file contains helpers for recursively interpolating all the strings
// in pipeline objects.

// stringTransformer implementations mutate strings.
type stringTransformer interface {
	Transform(string) (string, error)
}

// envInterpolator transforms strings by replacing variables (${FOO}) with
// their values from an environment.
type envInterpolator struct {
	env interpolate.Env
}

func (e envInterpolator) Transform(s string) (string, error) {
	return interpolate.Interpolate(e.env, s)
}

// selfInterpolater describes types that can interpolate themselves in-place.
type selfInterpolater interface {
	interpolate(stringTransformer) error
}

// Interpolate applies variable interpolation to every string in the
// document, drawing values from env. The upload collaborator uses this to
// approximate locally what the agent does at upload time.
func (p *Pipeline) Interpolate(env interpolate.Env) error {
	tf := envInterpolator{env: env}
	if err := interpolateOrderedMap(tf, p.env); err != nil {
		return err
	}
	return interpolateSlice(tf, p.steps)
}

// interpolateAny interpolates (almost) anything in-place. When passed a
// string, it returns a new string. Anything it doesn't know how to
// interpolate is returned unaltered.
func interpolateAny[T any](tf stringTransformer, o T) (T, error) {
	// The box-typeswitch-unbox dance is required because the Go compiler
	// has no type switch for type parameters.
	var err error
	a := any(o)

	switch t := a.(type) {
	case selfInterpolater:
		err = t.interpolate(tf)

	case string:
		a, err = tf.Transform(t)

	case []string:
		err = interpolateSlice(tf, t)

	case []any:
		err = interpolateSlice(tf, t)

	case Branches:
		err = interpolateSlice(tf, t)

	case Plugins:
		err = interpolateSlice(tf, t)

	case map[string]any:
		err = interpolateMap(tf, t)

	case map[string]string:
		err = interpolateMap(tf, t)

	case *ordered.MapSS:
		err = interpolateOrderedMap(tf, t)

	case *ordered.MapSA:
		err = interpolateOrderedMap(tf, t)

	default:
		return o, nil
	}

	// This happens if T is an interface type and o was interface-nil to
	// begin with. (You can't type assert interface-nil.)
	if a == nil {
		var zt T
		return zt, err
	}
	return a.(T), err
}

// interpolateSlice applies interpolateAny over any type of slice. Values in
// the slice are updated in-place.
func interpolateSlice[E any, S ~[]E](tf stringTransformer, s S) error {
	for i, e := range s {
		// It could be a string, so replace the old value with the new.
		inte, err := interpolateAny(tf, e)
		if err != nil {
			return err
		}
		s[i] = inte
	}
	return nil
}

// interpolateMap applies interpolateAny over both keys and values of any
// type of map. The map is altered in-place.
func interpolateMap[K comparable, V any, M ~map[K]V](tf stringTransformer, m M) error {
	for k, v := range m {
		intk, err := interpolateAny(tf, k)
		if err != nil {
			return err
		}
		intv, err := interpolateAny(tf, v)
		if err != nil {
			return err
		}
		if k != intk {
			delete(m, k)
		}
		m[intk] = intv
	}
	return nil
}

// interpolateOrderedMap applies interpolateAny over any type of ordered.Map.
// The map is altered in-place; keys keep their positions even when
// interpolation changes them.
func interpolateOrderedMap[K comparable, V any](tf stringTransformer, m *ordered.Map[K, V]) error {
	return m.Range(func(k K, v V) error {
		intk, err := interpolateAny(tf, k)
		if err != nil {
			return err
		}
		intv, err := interpolateAny(tf, v)
		if err != nil {
			return err
		}
		m.Replace(k, intk, intv)
		return nil
	})
}
