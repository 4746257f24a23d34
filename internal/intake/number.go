// Package intake decodes the loosely shaped records that arrive from content
// generators and user-edited rosters. Nothing here trusts the input's shape:
// every field has a default and every number goes through ParseNumber.
package intake

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Japanese large-number units, largest first.
var kanjiUnits = []struct {
	mark string
	mult float64
}{
	{"億", 1e8},
	{"万", 1e4},
}

// ParseNumber converts raw into a float. Strings may carry currency symbols,
// separators, full-width digits and a k/m/万/億 suffix. Anything unparseable
// yields def.
func ParseNumber(raw any, def float64) float64 {
	switch v := raw.(type) {
	case nil:
		return def
	case float64:
		return finiteOr(v, def)
	case float32:
		return finiteOr(float64(v), def)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return ParseNumber(v.String(), def)
		}
		return finiteOr(f, def)
	case string:
		return parseString(v, def)
	default:
		return def
	}
}

// ParseInt is ParseNumber truncated toward zero.
func ParseInt(raw any, def int) int {
	f := ParseNumber(raw, math.NaN())
	if math.IsNaN(f) {
		return def
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

// ParseInt64 is ParseNumber truncated toward zero, for monetary amounts.
func ParseInt64(raw any, def int64) int64 {
	f := ParseNumber(raw, math.NaN())
	if math.IsNaN(f) || math.Abs(f) > 9e18 {
		return def
	}
	return int64(f)
}

func parseString(s string, def float64) float64 {
	s = strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
	if s == "" {
		return def
	}

	// "1億2000万" style composites.
	for _, u := range kanjiUnits {
		head, tail, found := strings.Cut(s, u.mark)
		if !found {
			continue
		}
		h, _, ok := leadingNumber(head)
		if !ok {
			return def
		}
		total := h * u.mult
		if r := parseString(tail, math.NaN()); !math.IsNaN(r) {
			total += r
		}
		return total
	}

	f, rest, ok := leadingNumber(s)
	if !ok {
		return def
	}
	return f * suffixMultiplier(rest)
}

// suffixMultiplier scales by the word right after the number. Only whole
// words count, so "3 mins" stays 3.
func suffixMultiplier(rest string) float64 {
	word := rest
	if i := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		word = rest[:i]
	}
	switch word {
	case "k", "thousand":
		return 1e3
	case "m", "mn", "mil", "million":
		return 1e6
	case "bn", "billion":
		return 1e9
	}
	return 1
}

// leadingNumber finds the first numeric run in s, ignoring thousands
// separators, and returns it with the trimmed text that follows.
func leadingNumber(s string) (float64, string, bool) {
	first := strings.IndexAny(s, "0123456789")
	if first == -1 {
		return 0, "", false
	}
	end := first
	for end < len(s) && strings.IndexByte("0123456789.,", s[end]) >= 0 {
		end++
	}
	// Exponent, as in "1e5" or "2.5e-3".
	if end < len(s) && s[end] == 'e' {
		j := end + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			end = k
		}
	}
	digits := strings.ReplaceAll(s[first:end], ",", "")
	digits = strings.TrimRight(digits, ".")
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, "", false
	}
	if first > 0 && s[first-1] == '-' {
		f = -f
	}
	return f, strings.TrimSpace(s[end:]), true
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
