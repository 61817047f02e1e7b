package semver

import (
	"fmt"
	"regexp"
	"strings"
)

// termPattern tokenizes one comparator term, allowing (per the spec's own
// examples, e.g. "~> 1.2") optional whitespace between the operator and the
// version it applies to.
var termPattern = regexp.MustCompile(`(>=|<=|~>|==|>|<)?\s*([0-9][0-9A-Za-z.\-+]*)`)

// Satisfies reports whether v satisfies constraint, a space-separated
// AND-conjunction of comparator terms, with "||" alternating between
// AND-groups (OR). Supported comparators: >=, >, <=, <, ==, ~>.
func (v Version) Satisfies(constraint string) (bool, error) {
	orGroups := strings.Split(constraint, "||")
	for _, group := range orGroups {
		group = strings.TrimSpace(group)
		matches := termPattern.FindAllStringSubmatch(group, -1)
		if len(matches) == 0 {
			return false, fmt.Errorf("empty constraint group in %q", constraint)
		}
		allMatch := true
		for _, m := range matches {
			ok, err := v.satisfiesTerm(m[1], m[2])
			if err != nil {
				return false, err
			}
			if !ok {
				allMatch = false
				break
			}
		}
		if allMatch {
			return true, nil
		}
	}
	return false, nil
}

func (v Version) satisfiesTerm(op, rest string) (bool, error) {
	if op == "~>" {
		return v.satisfiesTilde(rest)
	}
	want, err := Parse(rest)
	if err != nil {
		return false, fmt.Errorf("invalid version in constraint %q%s: %w", op, rest, err)
	}
	cmp := v.Compare(want)
	switch op {
	case ">=":
		return cmp >= 0, nil
	case ">":
		return cmp > 0, nil
	case "<=":
		return cmp <= 0, nil
	case "<":
		return cmp < 0, nil
	case "==", "":
		return cmp == 0, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

// satisfiesTilde implements "~> X.Y.Z" => >= X.Y.Z, < X.(Y+1).0;
// "~> X.Y" => >= X.Y.0, < (X+1).0.0; "~> X" => >= X.0.0, no upper bound.
func (v Version) satisfiesTilde(base string) (bool, error) {
	parts := strings.Split(base, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return false, fmt.Errorf("invalid ~> constraint %q", base)
	}
	lower, err := Parse(base)
	if err != nil {
		return false, fmt.Errorf("invalid ~> constraint %q: %w", base, err)
	}
	if v.Compare(lower) < 0 {
		return false, nil
	}
	switch len(parts) {
	case 1:
		return true, nil // no upper bound
	case 2:
		upper := Version{Major: lower.Major + 1}
		return v.Compare(upper) < 0, nil
	default: // 3
		upper := Version{Major: lower.Major, Minor: lower.Minor + 1}
		return v.Compare(upper) < 0, nil
	}
}
