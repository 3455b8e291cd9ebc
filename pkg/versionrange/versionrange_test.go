package versionrange

import (
	"fmt"
	"testing"

	"github.com/coreos/go-semver/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatisfies(t *testing.T) {
	tests := []struct {
		expr    string
		version string
		want    bool
	}{
		{expr: "<=1.126.0", version: "1.0.0", want: true},
		{expr: "<=1.126.0", version: "1.126.0", want: true},
		{expr: "<=1.126.0", version: "1.130.0", want: false},

		// clauses within a component are a conjunction
		{expr: "<1.130.0 >=1.126.0", version: "1.129.0", want: true},
		{expr: "<1.130.0 >=1.126.0", version: "1.126.0", want: true},
		{expr: "<1.130.0 >=1.126.0", version: "1.130.0", want: false},
		{expr: "<1.130.0 >=1.126.0", version: "1.125.9", want: false},
		{expr: ">=2.132.0 <=2.132.1", version: "2.132.0", want: true},
		{expr: ">=2.132.0 <=2.132.1", version: "2.132.2", want: false},

		// bare versions are exact
		{expr: "2.132.0", version: "2.132.0", want: true},
		{expr: "2.132.0", version: "2.132.1", want: false},
		{expr: "=2.132.0", version: "2.132.0", want: true},

		// whitespace between operator and version
		{expr: "<= 2.1.0", version: "1.144.0", want: true},
		{expr: "<= 2.1.0", version: "2.12.0", want: false},
		{expr: ">  1.0.0 <  2.0.0", version: "1.5.0", want: true},

		// integer bootstrap versions
		{expr: "<25", version: "22", want: true},
		{expr: "<25", version: "25", want: false},
		{expr: ">=21 <=22", version: "22", want: true},

		// pre-releases order before their release
		{expr: "<= 2.13.0-alpha.0", version: "2.12.0-alpha.0", want: true},
		{expr: "<= 2.13.0-alpha.0", version: "2.12.0", want: true},
		{expr: "<= 2.13.0-alpha.0", version: "2.13.0", want: false},
		{expr: "<2.0.0", version: "2.0.0-rc.1", want: true},
		{expr: ">=2.0.0-alpha.1", version: "2.0.0-alpha.0", want: false},

		// partials and wildcards
		{expr: "1.x", version: "1.99.0", want: true},
		{expr: "1.x", version: "2.0.0", want: false},
		{expr: "<=1.2", version: "1.2.9", want: true},
		{expr: ">1.2", version: "1.2.9", want: false},
		{expr: ">1.2", version: "1.3.0", want: true},
		{expr: "*", version: "0.0.1", want: true},

		// caret, tilde and hyphen ranges
		{expr: "^2.3.1", version: "2.99.0", want: true},
		{expr: "^2.3.1", version: "3.0.0", want: false},
		{expr: "^0.2.3", version: "0.2.9", want: true},
		{expr: "^0.2.3", version: "0.3.0", want: false},
		{expr: "~1.2.3", version: "1.2.9", want: true},
		{expr: "~1.2.3", version: "1.3.0", want: false},
		{expr: "1.2.3 - 1.4", version: "1.4.7", want: true},
		{expr: "1.2.3 - 1.4", version: "1.5.0", want: false},
		{expr: "1.2.3 - 1.4.0", version: "1.4.0", want: true},

		// alternatives
		{expr: "<25 || >=30", version: "27", want: false},
		{expr: "<25 || >=30", version: "31", want: true},

		{expr: "v2.1.0", version: "v2.1.0", want: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s in %s", tt.version, tt.expr), func(t *testing.T) {
			got, err := Satisfies(tt.expr, tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, expr := range []string{
		"",
		"   ",
		"<=",
		"not-a-version",
		"1.2.3.4",
		">=1.x-alpha",
		"<1.130.0 ||",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.Error(t, err)
		})
	}
}

func TestParse_Clauses(t *testing.T) {
	r, err := Parse("<1.130.0 >=1.126.0")
	require.NoError(t, err)
	require.Len(t, r.Alternatives, 1)

	var clauses []string
	for _, c := range r.Alternatives[0] {
		clauses = append(clauses, c.String())
	}
	assert.Equal(t, []string{"<1.130.0", ">=1.126.0"}, clauses)
}

func TestSatisfiesAll_IsConjunction(t *testing.T) {
	v := *semver.New("1.5.0")
	below := Clause{Op: LT, Version: *semver.New("2.0.0")}
	above := Clause{Op: GTE, Version: *semver.New("1.0.0")}
	tooHigh := Clause{Op: GTE, Version: *semver.New("1.6.0")}

	assert.True(t, SatisfiesAll(nil, v))
	assert.True(t, SatisfiesAll([]Clause{below, above}, v))
	assert.False(t, SatisfiesAll([]Clause{below, above, tooHigh}, v))
	assert.False(t, SatisfiesAll([]Clause{tooHigh, below}, v))
}

func TestCoerce(t *testing.T) {
	tests := map[string]string{
		"22":             "22.0.0",
		"v2.1":           "2.1.0",
		"2.13.0-alpha.0": "2.13.0-alpha.0",
		" 1.2.3 ":        "1.2.3",
	}
	for given, want := range tests {
		t.Run(given, func(t *testing.T) {
			v, err := Coerce(given)
			require.NoError(t, err)
			assert.Equal(t, want, v.String())
		})
	}

	_, err := Coerce("latest")
	assert.Error(t, err)
}
