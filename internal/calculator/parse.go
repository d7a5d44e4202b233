package calculator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numericPrefix matches the longest leading number a browser's parseFloat accepts.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseNumberOrZero normalizes raw form input into a number.
//
// Leading whitespace, including Unicode spaces and a byte order mark, is skipped and the longest numeric prefix is parsed, so
// "12abc" yields 12 and "3.5 kg" yields 3.5. Input with no numeric prefix, NaN
// and zero all yield 0. Invalid input is never reported as an error; callers
// that need to reject it must check the raw string themselves.
func ParseNumberOrZero(raw string) float64 {
	s := strings.TrimLeftFunc(raw, isLeadingSpace)
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Out-of-range literals come back as ±Inf with ErrRange, which is
		// what parseFloat produces too.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return 0
		}
	}
	if math.IsNaN(v) || v == 0 {
		return 0
	}
	return v
}

func isLeadingSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}
