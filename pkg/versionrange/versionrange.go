// Package versionrange parses the version range expressions carried by notice components
// (`<1.130.0 >=1.126.0`, `<= 2.1.0`, `^2.3`, `1.2.3 - 1.4`, `<25 || >=30`) into comparator
// clauses and evaluates them against a version.
package versionrange

import (
	"strconv"
	"strings"

	msemver "github.com/Masterminds/semver/v3"
	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
)

type Op string

const (
	LT  Op = "<"
	LTE Op = "<="
	GT  Op = ">"
	GTE Op = ">="
	EQ  Op = "="
)

type (
	// Clause is a single comparator: the version under test must satisfy `<version under test> Op Version`.
	Clause struct {
		Op      Op
		Version semver.Version
	}

	// Range is a disjunction of conjunctions. A version is in the range if it satisfies every clause
	// of at least one alternative.
	Range struct {
		Expr         string
		Alternatives [][]Clause
	}
)

func (c Clause) String() string {
	return string(c.Op) + c.Version.String()
}

// Satisfied reports whether v satisfies the clause under semver ordering.
func (c Clause) Satisfied(v semver.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case LT:
		return cmp < 0
	case LTE:
		return cmp <= 0
	case GT:
		return cmp > 0
	case GTE:
		return cmp >= 0
	default:
		return cmp == 0
	}
}

// SatisfiesAll reports whether v satisfies every clause. An empty clause list matches any version.
func SatisfiesAll(clauses []Clause, v semver.Version) bool {
	for _, c := range clauses {
		if !c.Satisfied(v) {
			return false
		}
	}
	return true
}

func (r Range) Contains(v semver.Version) bool {
	for _, alt := range r.Alternatives {
		if SatisfiesAll(alt, v) {
			return true
		}
	}
	return false
}

func (r Range) String() string {
	return r.Expr
}

// Satisfies parses both the range and the version and reports whether the version is in the range.
func Satisfies(expr string, version string) (bool, error) {
	r, err := Parse(expr)
	if err != nil {
		return false, err
	}
	v, err := Coerce(version)
	if err != nil {
		return false, err
	}
	return r.Contains(*v), nil
}

// Coerce parses a version leniently: a leading `v` is allowed and missing minor or patch components
// are zero, so the bootstrap stack version `22` becomes `22.0.0`.
func Coerce(version string) (*semver.Version, error) {
	loose, err := msemver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version %q", version)
	}
	return &semver.Version{
		Major:      int64(loose.Major()),
		Minor:      int64(loose.Minor()),
		Patch:      int64(loose.Patch()),
		PreRelease: semver.PreRelease(loose.Prerelease()),
		Metadata:   loose.Metadata(),
	}, nil
}

// Parse turns a range expression into its clauses. Whitespace separates clauses that must all hold,
// `||` separates alternatives, and an operator may be separated from its version by whitespace.
func Parse(expr string) (Range, error) {
	r := Range{Expr: expr}
	if strings.TrimSpace(expr) == "" {
		return r, errors.New("empty version range")
	}
	for _, altExpr := range strings.Split(expr, "||") {
		alt, err := parseAlternative(altExpr)
		if err != nil {
			return Range{}, errors.Wrapf(err, "invalid version range %q", expr)
		}
		r.Alternatives = append(r.Alternatives, alt)
	}
	return r, nil
}

func parseAlternative(expr string) ([]Clause, error) {
	tokens := strings.Fields(expr)
	if len(tokens) == 0 {
		return nil, errors.New("empty alternative")
	}
	if len(tokens) == 3 && tokens[1] == "-" {
		return hyphenRange(tokens[0], tokens[2])
	}

	clauses := []Clause{}
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if isOperator(token) {
			if i+1 >= len(tokens) {
				return nil, errors.Errorf("operator %q has no version", token)
			}
			i++
			token += tokens[i]
		}
		parsed, err := parseComparator(token)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, parsed...)
	}
	return clauses, nil
}

func isOperator(token string) bool {
	switch token {
	case "<", "<=", ">", ">=", "=", "^", "~":
		return true
	}
	return false
}

// parseComparator desugars a single comparator token into plain clauses.
func parseComparator(token string) ([]Clause, error) {
	op, rest := splitOperator(token)
	p, err := parsePartial(rest)
	if err != nil {
		return nil, err
	}

	switch op {
	case "^":
		return caret(p), nil
	case "~":
		return tilde(p), nil
	}

	if p.isExact() {
		if op == "" {
			op = EQ
		}
		return []Clause{{Op: op, Version: p.version()}}, nil
	}

	if p.parts == 0 {
		switch op {
		case LT, GT:
			return []Clause{nothing()}, nil
		default:
			return []Clause{}, nil
		}
	}

	lower := p.version()
	upper := p.next()
	switch op {
	case LT:
		return []Clause{{Op: LT, Version: lower}}, nil
	case LTE:
		return []Clause{{Op: LT, Version: upper}}, nil
	case GT:
		return []Clause{{Op: GTE, Version: upper}}, nil
	case GTE:
		return []Clause{{Op: GTE, Version: lower}}, nil
	default:
		return []Clause{{Op: GTE, Version: lower}, {Op: LT, Version: upper}}, nil
	}
}

func splitOperator(token string) (Op, string) {
	for _, op := range []Op{LTE, GTE, LT, GT, EQ, "^", "~"} {
		if strings.HasPrefix(token, string(op)) {
			return op, strings.TrimPrefix(token, string(op))
		}
	}
	return "", token
}

func hyphenRange(from, to string) ([]Clause, error) {
	lower, err := parsePartial(from)
	if err != nil {
		return nil, err
	}
	upper, err := parsePartial(to)
	if err != nil {
		return nil, err
	}
	clauses := []Clause{{Op: GTE, Version: lower.version()}}
	switch {
	case upper.isExact():
		clauses = append(clauses, Clause{Op: LTE, Version: upper.version()})
	case upper.parts > 0:
		clauses = append(clauses, Clause{Op: LT, Version: upper.next()})
	}
	return clauses, nil
}

// caret allows changes that do not modify the left-most non-zero component.
func caret(p partial) []Clause {
	lower := Clause{Op: GTE, Version: p.version()}
	var upper semver.Version
	switch {
	case p.parts == 0:
		return []Clause{}
	case p.major > 0 || p.parts == 1:
		upper = semver.Version{Major: p.major + 1}
	case p.minor > 0 || p.parts == 2:
		upper = semver.Version{Minor: p.minor + 1}
	default:
		upper = semver.Version{Patch: p.patch + 1}
	}
	return []Clause{lower, {Op: LT, Version: upper}}
}

// tilde allows patch-level changes when a minor version is given, minor-level changes otherwise.
func tilde(p partial) []Clause {
	lower := Clause{Op: GTE, Version: p.version()}
	switch p.parts {
	case 0:
		return []Clause{}
	case 1:
		return []Clause{lower, {Op: LT, Version: semver.Version{Major: p.major + 1}}}
	default:
		return []Clause{lower, {Op: LT, Version: semver.Version{Major: p.major, Minor: p.minor + 1}}}
	}
}

// nothing is a clause no version satisfies.
func nothing() Clause {
	return Clause{Op: LT, Version: semver.Version{PreRelease: "0"}}
}

// partial is a possibly incomplete version: `2`, `2.1`, `2.x`, `*` or a full `2.1.0-alpha.0`.
type partial struct {
	major, minor, patch int64
	// parts is how many leading numeric components were given before a wildcard or the end.
	parts int
	exact *semver.Version
}

func (p partial) isExact() bool {
	return p.exact != nil
}

func (p partial) version() semver.Version {
	if p.exact != nil {
		return *p.exact
	}
	return semver.Version{Major: p.major, Minor: p.minor, Patch: p.patch}
}

// next is the first version past the partial: `2` -> `3.0.0`, `2.1` -> `2.2.0`.
func (p partial) next() semver.Version {
	if p.parts == 1 {
		return semver.Version{Major: p.major + 1}
	}
	return semver.Version{Major: p.major, Minor: p.minor + 1}
}

func parsePartial(s string) (partial, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "="), "v")
	if s == "" || s == "*" || s == "x" || s == "X" {
		return partial{}, nil
	}

	base := s
	if idx := strings.IndexAny(s, "-+"); idx >= 0 {
		base = s[:idx]
	}
	segments := strings.Split(base, ".")
	if len(segments) > 3 {
		return partial{}, errors.Errorf("invalid version %q", s)
	}

	var p partial
	numbers := []*int64{&p.major, &p.minor, &p.patch}
	for i, segment := range segments {
		if segment == "x" || segment == "X" || segment == "*" {
			break
		}
		n, err := strconv.ParseInt(segment, 10, 64)
		if err != nil || n < 0 {
			return partial{}, errors.Errorf("invalid version %q", s)
		}
		*numbers[i] = n
		p.parts++
	}
	if p.parts < len(segments) && base != s {
		return partial{}, errors.Errorf("invalid version %q: wildcard with pre-release", s)
	}
	if p.parts == 3 {
		v, err := Coerce(s)
		if err != nil {
			return partial{}, err
		}
		p.exact = v
	} else if base != s {
		return partial{}, errors.Errorf("invalid version %q: pre-release on a partial version", s)
	}
	return p, nil
}
