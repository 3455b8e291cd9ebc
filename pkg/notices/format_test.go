package notices

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_wrap(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		want  []string
	}{
		{
			name:  "short",
			s:     "cdk deploy bug",
			width: 60,
			want:  []string{"cdk deploy bug"},
		},
		{
			name:  "empty",
			s:     "",
			width: 60,
			want:  []string{""},
		},
		{
			name:  "exact fit",
			s:     "aaaa bbbb cccc",
			width: 9,
			want:  []string{"aaaa bbbb", "cccc"},
		},
		{
			name:  "long word gets its own line",
			s:     "see lambda-layer-node-proxy-agent/layer/package.json now",
			width: 20,
			want:  []string{"see", "lambda-layer-node-proxy-agent/layer/package.json", "now"},
		},
		{
			name:  "whitespace collapses",
			s:     "  a \n\t b  ",
			width: 60,
			want:  []string{"a b"},
		},
		{
			name:  "wide runes",
			s:     "通知 通知 通知",
			width: 10,
			want:  []string{"通知 通知", "通知"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.s, tt.width))
		})
	}
}

func Test_report_WriteTo(t *testing.T) {
	assert := assert.New(t)

	var sb strings.Builder
	n, err := report{notices: []Notice{cliDeployNotice}}.WriteTo(&sb)
	assert.NoError(err)
	assert.Equal(int64(len(sb.String())), n)
	assert.Equal(header+cliDeployText+hint("29420"), sb.String())

	sb.Reset()
	n, err = report{}.WriteTo(&sb)
	assert.NoError(err)
	assert.Zero(n)
	assert.Empty(sb.String())
}

func Test_formatNotice_AffectedVersions(t *testing.T) {
	notice := Notice{
		Title:       "Regression",
		IssueNumber: 42,
		Overview:    "Some bug description",
		Components: []Component{
			{Name: "cli", Version: "<2.0.0"},
			{Name: "framework", Version: "<= 2.1.0"},
		},
	}
	assert.Contains(t, formatNotice(notice), "\tAffected versions: cli: <2.0.0, framework: <= 2.1.0\n\n")
}
