package notices

import (
	"fmt"
	"io"
	"strings"

	"github.com/klothoplatform/cdk-notices/pkg/ioutil"
	"github.com/mattn/go-runewidth"
)

const (
	noticesHeader   = "NOTICES         (What's this? https://github.com/aws/aws-cdk/wiki/CLI-Notices)"
	issueURLPrefix  = "https://github.com/aws/aws-cdk/issues/"
	overviewWidth   = 60
	overviewIndent  = "\t          "
	acknowledgeHint = `If you don’t want to see a notice anymore, use "cdk acknowledge <id>". For example, "cdk acknowledge %d".`
)

type report struct {
	notices   []Notice
	showTotal bool
	total     int
}

func (r report) WriteTo(w io.Writer) (count int64, err error) {
	wh := ioutil.NewWriteToHelper(w, &count, &err)

	if len(r.notices) > 0 {
		wh.Writef("\n%s\n\n", noticesHeader)
		for i, notice := range r.notices {
			if i > 0 {
				wh.Write("\n\n")
			}
			wh.Write(formatNotice(notice))
		}
		wh.Write("\n\n")
		wh.Writef(acknowledgeHint, r.notices[0].IssueNumber)
	}
	if r.showTotal {
		wh.Writef("\n\nThere are %d unacknowledged notice(s).", r.total)
	}
	return
}

func formatNotice(notice Notice) string {
	affected := make([]string, len(notice.Components))
	for i, c := range notice.Components {
		affected[i] = fmt.Sprintf("%s: %s", c.Name, c.Version)
	}
	return strings.Join([]string{
		fmt.Sprintf("%d\t%s", notice.IssueNumber, notice.Title),
		"\tOverview: " + strings.Join(wrap(notice.Overview, overviewWidth), "\n"+overviewIndent),
		"\tAffected versions: " + strings.Join(affected, ", "),
		"\tMore information at: " + issueURLPrefix + fmt.Sprint(notice.IssueNumber),
	}, "\n\n") + "\n"
}

// wrap breaks s into lines no wider than width, splitting on whitespace. A word wider than width gets a line of its own.
func wrap(s string, width int) []string {
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+w > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if lineWidth > 0 || len(lines) == 0 {
		lines = append(lines, line.String())
	}
	return lines
}
