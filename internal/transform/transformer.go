// Package transform provides per-column value transformers for the CSV pipeline.
//
// A Transformer maps one raw cell value to its replacement. Transformers never
// fail: anything that could go wrong (bad parameters, unknown names) is rejected
// when the transformer is built, not when it runs.
package transform

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Transformer rewrites a single cell value.
type Transformer interface {
	Transform(value string) string
}

// Func adapts a plain function to the Transformer interface.
type Func func(string) string

// Transform calls f(value).
func (f Func) Transform(value string) string { return f(value) }

// Identity returns a transformer that passes values through unchanged.
func Identity() Transformer {
	return Func(func(v string) string { return v })
}

// Upper converts non-empty values to upper case using full Unicode case
// mapping, so "straße" becomes "STRASSE".
func Upper() Transformer {
	return unlessEmpty(caseMapper(func() cases.Caser { return cases.Upper(language.Und) }))
}

// Lower converts non-empty values to lower case. A word-final capital sigma
// lowers to "ς".
func Lower() Transformer {
	return unlessEmpty(caseMapper(func() cases.Caser { return cases.Lower(language.Und) }))
}

// Trim removes leading and trailing whitespace from non-empty values.
// A value made only of whitespace is non-empty, so it trims to "".
func Trim() Transformer {
	return unlessEmpty(strings.TrimSpace)
}

// caseMapper applies a fresh caser per value. A cases.Caser carries state
// between calls and must not be shared across goroutines.
func caseMapper(newCaser func() cases.Caser) func(string) string {
	return func(v string) string {
		c := newCaser()
		return c.String(v)
	}
}

// unlessEmpty wraps fn so that the empty string is returned as-is.
func unlessEmpty(fn func(string) string) Func {
	return func(v string) string {
		if v == "" {
			return v
		}
		return fn(v)
	}
}

// Chain applies transformers in order. Nil entries are skipped.
type Chain []Transformer

// Transform runs the value through every transformer in the chain.
func (c Chain) Transform(value string) string {
	for _, t := range c {
		if t == nil {
			continue
		}
		value = t.Transform(value)
	}
	return value
}
