package transform

// normalize.go holds cleanup transformers for the messy values spreadsheet
// exports tend to contain:
//   - Excel formula wrappers (="00123") and stray quotes
//   - dates in US, EU and ISO layouts, with 2- or 4-digit years
//   - currency symbols, thousands separators and accounting negatives
//   - yes/no style booleans
//   - US state names
//
// Values that cannot be normalized are passed through unchanged so a bad
// cell never aborts a run.

import (
	"regexp"
	"strings"
	"time"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot: a 2-digit year more than this many years in the future
// is taken to be in the previous century.
var TwoDigitYearPivot = 20

// DefaultDateLayout is the output layout of Date when none is given.
const DefaultDateLayout = time.DateOnly

var (
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// Clean strips Excel formula wrappers (="x" or =x) and surrounding quotes,
// then trims the value and collapses internal whitespace runs to one space.
func Clean() Transformer {
	return Func(func(v string) string {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, `="`) && strings.HasSuffix(v, `"`) && len(v) >= 3 {
			v = v[2 : len(v)-1]
		} else if strings.HasPrefix(v, "=") {
			v = v[1:]
		}
		return strings.Join(strings.Fields(strings.Trim(v, `"'`)), " ")
	})
}

// parseDate tries the 4-digit year layouts first since they are unambiguous.
func parseDate(s string, now time.Time) (time.Time, bool) {
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := now.Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// Date rewrites recognised dates using layout (a Go reference layout).
func Date(layout string) Transformer {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return Func(func(v string) string {
		t, ok := parseDate(strings.TrimSpace(v), time.Now())
		if !ok {
			return v
		}
		return t.Format(layout)
	})
}

// Number reduces currency amounts such as "$1,234.50" or "(12.00)" to a
// plain decimal ("1234.50", "-12.00").
func Number() Transformer {
	return Func(func(v string) string {
		s := strings.TrimSpace(v)
		if s == "" {
			return v
		}

		negative := false
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			negative = true
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
		s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "").Replace(s)
		s = strings.TrimSpace(s)
		if negative {
			s = "-" + s
		}

		if !numericRegex.MatchString(s) {
			return v
		}
		return s
	})
}

// Bool maps yes/no style values to "true" or "false".
func Bool() Transformer {
	return Func(func(v string) string {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "yes", "y", "1":
			return "true"
		case "false", "f", "no", "n", "0":
			return "false"
		default:
			return v
		}
	})
}

// usStates maps US state names to their postal codes.
var usStates = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
	"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
	"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
	"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
}

// stateCodes is the reverse of usStates.
var stateCodes = func() map[string]bool {
	codes := make(map[string]bool, len(usStates))
	for _, code := range usStates {
		codes[code] = true
	}
	return codes
}()

// USState converts US state names to 2-letter codes and upper-cases codes.
func USState() Transformer {
	return Func(func(v string) string {
		s := strings.TrimSpace(v)
		if code, ok := usStates[strings.ToLower(s)]; ok {
			return code
		}
		if upper := strings.ToUpper(s); stateCodes[upper] {
			return upper
		}
		return v
	})
}
