package transform

// custom.go holds parametrised transformers. Each captures its parameters at
// construction time and never mutates them afterwards. Instances hold no
// other state, so one can serve several columns and concurrent runs.

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTruncateSuffix is appended by Truncate when no suffix is given.
const DefaultTruncateSuffix = "..."

// DefaultPlaceholder replaces blank values in Default when no value is given.
const DefaultPlaceholder = "N/A"

// Prefix prepends p to every value, including empty ones.
func Prefix(p string) Transformer {
	return Func(func(v string) string { return p + v })
}

// Phone formats values containing exactly ten digits as (XXX) XXX-XXXX.
// Anything else is returned unchanged.
func Phone() Transformer {
	return Func(func(v string) string {
		digits := make([]rune, 0, 10)
		for _, r := range v {
			if unicode.IsDigit(r) {
				digits = append(digits, r)
			}
		}
		if len(digits) != 10 {
			return v
		}
		return "(" + string(digits[:3]) + ") " + string(digits[3:6]) + "-" + string(digits[6:])
	})
}

// Title converts non-empty values to title case. Letters after an
// apostrophe stay lower case ("they're" becomes "They're").
func Title() Transformer {
	return unlessEmpty(caseMapper(func() cases.Caser { return cases.Title(language.Und) }))
}

// Truncate shortens values longer than max runes. The result is exactly max
// runes long and ends with suffix.
func Truncate(max int, suffix string) Transformer {
	return Func(func(v string) string {
		if utf8.RuneCountInString(v) <= max {
			return v
		}
		keep := max - utf8.RuneCountInString(suffix)
		if keep < 0 {
			keep = 0
		}
		return string([]rune(v)[:keep]) + suffix
	})
}

// Default replaces empty or whitespace-only values with value.
func Default(value string) Transformer {
	return Func(func(v string) string {
		if strings.TrimSpace(v) == "" {
			return value
		}
		return v
	})
}
