// Package semver implements SemVer 2.0.0 parsing, comparison, and range
// satisfaction, used to evaluate DXT compatibility ranges against a host
// runtime/platform version.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed SemVer 2.0.0 version.
type Version struct {
	Major, Minor, Patch int
	Pre                 []string // pre-release identifiers, dot-separated
	Build               []string // build metadata identifiers, ignored in comparison
}

// Parse parses a SemVer 2.0.0 string of the form
// MAJOR[.MINOR[.PATCH]][-pre[.pre]...][+build[.build]...].
func Parse(s string) (Version, error) {
	var v Version
	rest := s

	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		build := rest[idx+1:]
		rest = rest[:idx]
		ids, err := splitIdentifiers(build, true)
		if err != nil {
			return Version{}, fmt.Errorf("invalid build metadata %q: %w", build, err)
		}
		v.Build = ids
	}

	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		pre := rest[idx+1:]
		rest = rest[:idx]
		ids, err := splitIdentifiers(pre, false)
		if err != nil {
			return Version{}, fmt.Errorf("invalid pre-release %q: %w", pre, err)
		}
		v.Pre = ids
	}

	parts := strings.Split(rest, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version core %q", rest)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := parseNumericIdentifier(part)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version core %q: %w", rest, err)
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

func parseNumericIdentifier(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric identifier")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("numeric identifier %q has a leading zero", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("numeric identifier %q contains non-digit characters", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// splitIdentifiers validates and splits a dot-separated identifier list.
// allowLeadingZero relaxes the leading-zero rule for build metadata, which
// SemVer allows (only pre-release numeric identifiers reject it).
func splitIdentifiers(s string, allowLeadingZero bool) ([]string, error) {
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty identifier")
		}
		for _, r := range p {
			if !isIdentifierChar(r) {
				return nil, fmt.Errorf("identifier %q contains invalid character %q", p, r)
			}
		}
		if !allowLeadingZero && isNumericIdentifier(p) && len(p) > 1 && p[0] == '0' {
			return nil, fmt.Errorf("numeric pre-release identifier %q has a leading zero", p)
		}
	}
	return parts, nil
}

func isIdentifierChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
}

func isNumericIdentifier(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the version back to its canonical SemVer string form.
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Pre) > 0 {
		b.WriteByte('-')
		b.WriteString(strings.Join(v.Pre, "."))
	}
	if len(v.Build) > 0 {
		b.WriteByte('+')
		b.WriteString(strings.Join(v.Build, "."))
	}
	return b.String()
}

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater than
// other. Build metadata is ignored entirely, per SemVer precedence rules.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	return comparePre(v.Pre, other.Pre)
}

// Equal reports whether v and other have equal precedence (build metadata
// ignored).
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Less reports whether v has lower precedence than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePre compares pre-release identifier lists. A version with no
// pre-release has higher precedence than one with pre-release identifiers.
func comparePre(a, b []string) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) == 0 {
		return 1 // a (no pre-release) > b (has pre-release)
	}
	if len(b) == 0 {
		return -1
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := comparePreIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a), len(b))
}

func comparePreIdentifier(a, b string) int {
	aNum, aIsNum := tryParseUint(a)
	bNum, bIsNum := tryParseUint(b)
	switch {
	case aIsNum && bIsNum:
		return compareInt(aNum, bNum)
	case aIsNum && !bIsNum:
		return -1 // numeric identifiers have lower precedence than alphanumeric
	case !aIsNum && bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func tryParseUint(s string) (int, bool) {
	if !isNumericIdentifier(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
