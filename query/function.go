package query

import (
	"strings"
	"time"
)

// Function is a named single-argument transform usable in expressions.
type Function interface {
	// Name returns the function name (case-sensitive)
	Name() string
	// Description returns a one-line help text
	Description() string
	// Evaluate transforms arg; now is the engine's current time
	Evaluate(arg string, now time.Time) string
}

// registry is the closed set of transforms, in help order.
var (
	registry     []Function
	registryByID map[string]Function
)

func init() {
	registry = []Function{
		&BulletedListFunc{},
		&DateDescriptionFunc{},
		&BoldFunc{},
		&DaysPlusFunc{},
		&ItalicsFunc{},
		&H3Func{},
		&UppercaseFunc{},
		&LowercaseFunc{},
		&TrimFunc{},
		&CommaFunc{},
	}
	registryByID = make(map[string]Function, len(registry))
	for _, f := range registry {
		registryByID[f.Name()] = f
	}
}

// LookupFunction returns the transform called name.
func LookupFunction(name string) (Function, bool) {
	f, ok := registryByID[name]
	return f, ok
}

// Functions returns every transform in help order.
func Functions() []Function {
	out := make([]Function, len(registry))
	copy(out, registry)
	return out
}

// StripFunctionNames removes every function name from s. Card renderers
// use it to turn a computed column name into a CSS class.
func StripFunctionNames(s string) string {
	for _, f := range registry {
		s = strings.ReplaceAll(s, f.Name(), "")
	}
	return s
}
