package yaml_util

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNotices struct {
	URL          string `yaml:"url,omitempty"`
	Disabled     bool   `yaml:"disabled,omitempty"`
	Acknowledged []int  `yaml:"acknowledged,omitempty"`
}

type testOptions struct {
	Notices testNotices `yaml:"notices,omitempty"`
}

func yamlText(s string) string {
	return strings.TrimLeft(dedent.Dedent(s), "\n")
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name    string
		given   string
		path    string
		value   string
		want    string
		wantErr bool
	}{
		{
			name:  "empty document",
			given: "",
			path:  "notices.url",
			value: "http://localhost/notices.json",
			want: yamlText(`
				notices:
				    url: http://localhost/notices.json
				`),
		},
		{
			name: "overwrite scalar and keep comments",
			given: yamlText(`
				# notices feed
				notices:
				    disabled: true # for now
				`),
			path:  "notices.disabled",
			value: "false",
			want: yamlText(`
				# notices feed
				notices:
				    disabled: false # for now
				`),
		},
		{
			name: "add sibling",
			given: yamlText(`
				notices:
				    disabled: true
				`),
			path:  "notices.url",
			value: "http://localhost",
			want: yamlText(`
				notices:
				    disabled: true
				    url: http://localhost
				`),
		},
		{
			name: "cannot overwrite a mapping",
			given: yamlText(`
				notices:
				    disabled: true
				`),
			path:    "notices",
			value:   "off",
			wantErr: true,
		},
		{
			name: "cannot walk through a scalar",
			given: yamlText(`
				notices: off
				`),
			path:    "notices.url",
			value:   "http://localhost",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			given:   "notices: [",
			path:    "notices.url",
			value:   "x",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetValue([]byte(tt.given), tt.path, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestAppendToSequence(t *testing.T) {
	tests := []struct {
		name    string
		given   string
		value   string
		want    string
		wantErr bool
	}{
		{
			name:  "empty document",
			given: "",
			value: "16603",
			want: yamlText(`
				notices:
				    acknowledged:
				        - 16603
				`),
		},
		{
			name: "append to existing",
			given: yamlText(`
				notices:
				    # issues I've read
				    acknowledged:
				        - 16603
				`),
			value: "17061",
			want: yamlText(`
				notices:
				    # issues I've read
				    acknowledged:
				        - 16603
				        - 17061
				`),
		},
		{
			name: "flow style is kept",
			given: yamlText(`
				notices:
				    acknowledged: [16603]
				`),
			value: "17061",
			want: yamlText(`
				notices:
				    acknowledged: [16603, 17061]
				`),
		},
		{
			name: "already present",
			given: yamlText(`
				notices:
				    acknowledged:
				        - 16603
				`),
			value: "16603",
			want: yamlText(`
				notices:
				    acknowledged:
				        - 16603
				`),
		},
		{
			name: "null becomes a list",
			given: yamlText(`
				notices:
				    acknowledged:
				`),
			value: "16603",
			want: yamlText(`
				notices:
				    acknowledged:
				        - 16603
				`),
		},
		{
			name: "scalar is not a list",
			given: yamlText(`
				notices:
				    acknowledged: 16603
				`),
			value:   "17061",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendToSequence([]byte(tt.given), "notices.acknowledged", tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCheckValid(t *testing.T) {
	valid := yamlText(`
		notices:
		    acknowledged: [1, 2]
		`)
	unknownField := yamlText(`
		notices:
		    acknowledged: [1, 2]
		    colour: blue
		`)
	wrongType := yamlText(`
		notices:
		    acknowledged: [one]
		`)

	assert := assert.New(t)
	assert.NoError(CheckValid[testOptions]([]byte(""), Strict))
	assert.NoError(CheckValid[testOptions]([]byte(valid), Strict))
	assert.NoError(CheckValid[testOptions]([]byte(unknownField), Lenient))
	assert.Error(CheckValid[testOptions]([]byte(unknownField), Strict))

	err := CheckValid[testOptions]([]byte(wrongType), Lenient)
	if assert.Error(err) {
		errs := YamlErrors(err)
		assert.Len(errs, 1)
		assert.Contains(errs[0], "one")
	}
}
