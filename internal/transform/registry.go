package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Definition describes a named transformer that can be built from string
// arguments, e.g. from a command-line flag or a profile file.
type Definition struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string // argument synopsis, e.g. "PREFIX"
	MinArgs     int
	MaxArgs     int
	Build       func(args []string) (Transformer, error)
}

var (
	registry   = make(map[string]Definition)
	aliases    = make(map[string]string)
	registryMu sync.RWMutex
)

// Register adds a transformer definition to the registry.
// Panics if the name or one of its aliases is already registered.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Build == nil {
		panic(fmt.Sprintf("transformer %s has no Build func", def.Name))
	}
	for _, name := range append([]string{def.Name}, def.Aliases...) {
		if _, exists := registry[name]; exists {
			panic(fmt.Sprintf("transformer already registered: %s", name))
		}
		if _, exists := aliases[name]; exists {
			panic(fmt.Sprintf("transformer already registered: %s", name))
		}
	}

	registry[def.Name] = def
	for _, a := range def.Aliases {
		aliases[a] = def.Name
	}
}

// Lookup returns a definition by name or alias.
func Lookup(name string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	def, ok := registry[name]
	return def, ok
}

// Build constructs the named transformer with the given arguments.
func Build(name string, args ...string) (Transformer, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown transformer %q", name)
	}
	if len(args) < def.MinArgs || (def.MaxArgs >= 0 && len(args) > def.MaxArgs) {
		return nil, fmt.Errorf("transformer %q: %s", def.Name, arityMessage(def, len(args)))
	}
	t, err := def.Build(args)
	if err != nil {
		return nil, fmt.Errorf("transformer %q: %w", def.Name, err)
	}
	return t, nil
}

func arityMessage(def Definition, got int) string {
	switch {
	case def.MinArgs == def.MaxArgs:
		return fmt.Sprintf("expects %d argument(s), got %d", def.MinArgs, got)
	case def.MaxArgs < 0:
		return fmt.Sprintf("expects at least %d argument(s), got %d", def.MinArgs, got)
	default:
		return fmt.Sprintf("expects %d to %d arguments, got %d", def.MinArgs, def.MaxArgs, got)
	}
}

// All returns all registered definitions sorted by name.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns the canonical names of all registered transformers, sorted.
func Names() []string {
	defs := All()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// Spec is a parsed COLUMN=NAME[:ARG...] transformer assignment.
type Spec struct {
	Column string
	Name   string
	Args   []string
}

// ParseSpec parses a transformer assignment such as "id=prefix:USER-".
// Arguments are separated by ':'. For a registered transformer the text is
// split into at most MaxArgs arguments, so the last one may itself contain
// ':' ("ts=date:15:04", "id=prefix:urn:x:").
func ParseSpec(s string) (Spec, error) {
	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" || rest == "" {
		return Spec{}, fmt.Errorf("invalid transformer spec %q: want COLUMN=NAME[:ARG...]", s)
	}
	name, rawArgs, hasArgs := strings.Cut(rest, ":")
	if name == "" {
		return Spec{}, fmt.Errorf("invalid transformer spec %q: missing transformer name", s)
	}

	args := []string{}
	if hasArgs {
		limit := -1
		if def, ok := Lookup(name); ok && def.MaxArgs > 0 {
			limit = def.MaxArgs
		}
		args = strings.SplitN(rawArgs, ":", limit)
	}
	return Spec{Column: column, Name: name, Args: args}, nil
}

// Build constructs the transformer named by the spec.
func (s Spec) Build() (Transformer, error) {
	return Build(s.Name, s.Args...)
}

func noArgs(t func() Transformer) func([]string) (Transformer, error) {
	return func([]string) (Transformer, error) { return t(), nil }
}

func init() {
	Register(Definition{
		Name:        "identity",
		Aliases:     []string{"none"},
		Description: "Pass values through unchanged",
		Build:       noArgs(Identity),
	})
	Register(Definition{
		Name:        "upper",
		Aliases:     []string{"uppercase"},
		Description: "Convert to upper case",
		Build:       noArgs(Upper),
	})
	Register(Definition{
		Name:        "lower",
		Aliases:     []string{"lowercase"},
		Description: "Convert to lower case",
		Build:       noArgs(Lower),
	})
	Register(Definition{
		Name:        "strip",
		Aliases:     []string{"trim"},
		Description: "Remove leading and trailing whitespace",
		Build:       noArgs(Trim),
	})
	Register(Definition{
		Name:        "title",
		Description: "Convert to title case",
		Build:       noArgs(Title),
	})
	Register(Definition{
		Name:        "phone",
		Description: "Format 10-digit phone numbers as (XXX) XXX-XXXX",
		Build:       noArgs(Phone),
	})
	Register(Definition{
		Name:        "prefix",
		Description: "Prepend a fixed string",
		Usage:       "PREFIX",
		MinArgs:     1,
		MaxArgs:     1,
		Build: func(args []string) (Transformer, error) {
			return Prefix(args[0]), nil
		},
	})
	Register(Definition{
		Name:        "truncate",
		Description: "Shorten values longer than MAX characters",
		Usage:       "MAX[:SUFFIX]",
		MinArgs:     1,
		MaxArgs:     2,
		Build: func(args []string) (Transformer, error) {
			max, err := strconv.Atoi(args[0])
			if err != nil || max < 0 {
				return nil, fmt.Errorf("invalid max length %q", args[0])
			}
			suffix := DefaultTruncateSuffix
			if len(args) > 1 {
				suffix = args[1]
			}
			return Truncate(max, suffix), nil
		},
	})
	Register(Definition{
		Name:        "default",
		Description: "Replace blank values with a placeholder",
		Usage:       "[VALUE]",
		MaxArgs:     1,
		Build: func(args []string) (Transformer, error) {
			if len(args) == 0 {
				return Default(DefaultPlaceholder), nil
			}
			return Default(args[0]), nil
		},
	})
	Register(Definition{
		Name:        "clean",
		Description: "Strip Excel formula wrappers and quotes, trim and collapse whitespace",
		Build:       noArgs(Clean),
	})
	Register(Definition{
		Name:        "date",
		Description: "Rewrite recognised dates using a Go time layout (default 2006-01-02)",
		Usage:       "[LAYOUT]",
		MaxArgs:     1,
		Build: func(args []string) (Transformer, error) {
			if len(args) == 0 {
				return Date(DefaultDateLayout), nil
			}
			return Date(args[0]), nil
		},
	})
	Register(Definition{
		Name:        "number",
		Aliases:     []string{"amount"},
		Description: "Reduce currency amounts to plain decimals",
		Build:       noArgs(Number),
	})
	Register(Definition{
		Name:        "bool",
		Description: "Normalize yes/no style values to true or false",
		Build:       noArgs(Bool),
	})
	Register(Definition{
		Name:        "state",
		Description: "Convert US state names to 2-letter codes",
		Build:       noArgs(USState),
	})
}
