// Package vercmp orders Encap version strings.
//
// A version is a dot separated base with an optional patch level after the
// first '+'. Subversions are compared pairwise; inside a subversion digit
// runs are compared numerically and non-digit runs lexically.
package vercmp

import (
	"sort"
	"strings"
)

// Compare returns -1, 0 or 1 when v1 is less than, equal to, or greater than v2.
func Compare(v1, v2 string) int {
	base1, patch1, hasPatch1 := strings.Cut(v1, "+")
	base2, patch2, hasPatch2 := strings.Cut(v2, "+")

	if c := compareBase(base1, base2); c != 0 {
		return c
	}

	switch {
	case hasPatch1 && hasPatch2:
		return Compare(patch1, patch2)
	case hasPatch2:
		return -1
	case hasPatch1:
		return 1
	}
	return 0
}

func compareBase(base1, base2 string) int {
	subs1 := strings.Split(base1, ".")
	subs2 := strings.Split(base2, ".")

	for i := 0; i < len(subs1) && i < len(subs2); i++ {
		rest1, rest2 := subs1[i], subs2[i]

		for rest1 != "" && rest2 != "" {
			digit1, digit2 := isDigit(rest1[0]), isDigit(rest2[0])
			switch {
			case digit1 && !digit2:
				return 1
			case !digit1 && digit2:
				return -1
			}

			n1 := runLength(rest1, digit1)
			n2 := runLength(rest2, digit2)
			run1, run2 := rest1[:n1], rest2[:n2]

			if digit1 {
				if c := compareNumeric(run1, run2); c != 0 {
					return c
				}
			}
			// equal numbers still differ by leading zeros: "06" < "6"
			if c := strings.Compare(run1, run2); c != 0 {
				return c
			}

			rest1, rest2 = rest1[n1:], rest2[n2:]
		}

		// leftover characters win unless only the other side has a
		// further subversion
		more1 := i+1 < len(subs1)
		more2 := i+1 < len(subs2)
		if rest1 == "" && rest2 != "" {
			if more1 && !more2 {
				return 1
			}
			return -1
		}
		if rest1 != "" && rest2 == "" {
			if !more1 && more2 {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(subs1) < len(subs2):
		return -1
	case len(subs1) > len(subs2):
		return 1
	}
	return 0
}

// compareNumeric compares two digit strings by value without overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

func runLength(s string, digits bool) int {
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) != digits {
			return i
		}
	}
	return len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Sort orders versions in place from oldest to newest.
func Sort(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// Latest returns the newest version, or false when versions is empty.
func Latest(versions []string) (string, bool) {
	return nth(versions, 0)
}

// SecondLatest returns the version just below the newest one.
func SecondLatest(versions []string) (string, bool) {
	return nth(versions, 1)
}

func nth(versions []string, fromTop int) (string, bool) {
	if len(versions) <= fromTop {
		return "", false
	}
	sorted := append([]string(nil), versions...)
	Sort(sorted)
	return sorted[len(sorted)-1-fromTop], true
}
