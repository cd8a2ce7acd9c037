// Package semver parses, compares, and range-checks the dotted version
// strings used in mod manifests: MAJOR.MINOR[.PATCH][-PRERELEASE].
//
// The comparison rules are: numeric components compare component-wise, a
// missing PATCH defaults to 0, and a version carrying a prerelease tag is
// always less than the same numeric version without one. Two prerelease
// tags compare case-insensitively as whole ASCII strings; dot-separated
// identifiers inside a tag are not compared numerically.
package semver

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is an immutable, cheaply copyable semantic version.
type Version struct {
	major, minor, patch int
	prerelease          string
	hasPrerelease       bool
}

// ParseError carries the offending input string for a failed Parse.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// Parse accepts MAJOR.MINOR[.PATCH][-PRERELEASE]. A missing PATCH defaults
// to 0. The prerelease tag is everything after the first '-' and must be
// non-empty printable ASCII with no whitespace.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &ParseError{Input: s, Reason: "empty version string"}
	}

	core := s
	var prerelease string
	hasPrerelease := false
	if dashIdx := strings.IndexByte(core, '-'); dashIdx != -1 {
		core = s[:dashIdx]
		prerelease = s[dashIdx+1:]
		hasPrerelease = true
		if prerelease == "" {
			return Version{}, &ParseError{Input: s, Reason: "empty prerelease tag"}
		}
		if !isPrintableASCIINoWhitespace(prerelease) {
			return Version{}, &ParseError{Input: s, Reason: "prerelease tag must be printable ASCII with no whitespace"}
		}
	}

	parts := strings.Split(core, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, &ParseError{Input: s, Reason: "expected MAJOR.MINOR[.PATCH]"}
	}

	major, err := parseNonNegativeInt(parts[0])
	if err != nil {
		return Version{}, &ParseError{Input: s, Reason: "invalid major component: " + err.Error()}
	}
	minor, err := parseNonNegativeInt(parts[1])
	if err != nil {
		return Version{}, &ParseError{Input: s, Reason: "invalid minor component: " + err.Error()}
	}
	patch := 0
	if len(parts) == 3 {
		patch, err = parseNonNegativeInt(parts[2])
		if err != nil {
			return Version{}, &ParseError{Input: s, Reason: "invalid patch component: " + err.Error()}
		}
	}

	return Version{
		major: major, minor: minor, patch: patch,
		prerelease: prerelease, hasPrerelease: hasPrerelease,
	}, nil
}

func parseNonNegativeInt(part string) (int, error) {
	if part == "" {
		return 0, fmt.Errorf("missing component")
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", part)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative component: %s", part)
	}
	return n, nil
}

func isPrintableASCIINoWhitespace(s string) bool {
	for _, r := range s {
		if r <= 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}

// String renders the version in canonical MAJOR.MINOR.PATCH[-prerelease] form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	if v.hasPrerelease {
		s += "-" + v.prerelease
	}
	return s
}

// Relation is the outcome of comparing two versions.
type Relation int

const (
	Less Relation = iota - 1
	Equal
	Greater
)

// Compare returns Less, Equal, or Greater for a relative to b.
func Compare(a, b Version) Relation {
	if c := cmp.Compare(a.major, b.major); c != 0 {
		return Relation(c)
	}
	if c := cmp.Compare(a.minor, b.minor); c != 0 {
		return Relation(c)
	}
	if c := cmp.Compare(a.patch, b.patch); c != 0 {
		return Relation(c)
	}
	return comparePrerelease(a, b)
}

// comparePrerelease implements "a version with a prerelease tag is less
// than the same numeric version without one", then ASCII (case-insensitive)
// comparison between two prerelease tags.
func comparePrerelease(a, b Version) Relation {
	if a.hasPrerelease && !b.hasPrerelease {
		return Less
	}
	if !a.hasPrerelease && b.hasPrerelease {
		return Greater
	}
	if !a.hasPrerelease && !b.hasPrerelease {
		return Equal
	}
	return Relation(cmp.Compare(strings.ToLower(a.prerelease), strings.ToLower(b.prerelease)))
}

// IsAtLeast reports whether a is not strictly less than b.
func IsAtLeast(a, b Version) bool {
	return Compare(a, b) != Less
}

// Equals reports structural equality (case-insensitive on the prerelease tag).
func Equals(a, b Version) bool {
	return Compare(a, b) == Relation(0)
}
